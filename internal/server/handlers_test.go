package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DaisyQuest/Transcriberator/internal/config"
	enginesignal "github.com/DaisyQuest/Transcriberator/internal/signal"
	"github.com/DaisyQuest/Transcriberator/internal/symbolic"
)

func newTestServer() *Server {
	return New(Config{Port: 0, Settings: config.Default()})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doJSON(t, newTestServer(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["model_version"] != symbolic.ModelVersion {
		t.Errorf("body = %v", body)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer()

	t.Run("RawBytes", func(t *testing.T) {
		raw := make([]byte, 16000)
		for i := range raw {
			raw[i] = byte((i*37 + 11) % 256)
		}
		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(raw))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var body struct {
			ID      string                             `json:"id"`
			Profile *enginesignal.AudioAnalysisProfile `json:"profile"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.ID == "" {
			t.Error("expected a result id")
		}
		if body.Profile == nil || body.Profile.ByteCount != len(raw) {
			t.Errorf("profile = %+v", body.Profile)
		}
	})

	t.Run("JSONSamples", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/analyze", map[string]any{
			"samples":     make([]int, 8000),
			"sample_rate": 16000,
			"channels":    1,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("EmptyBodyRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(nil))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for empty bytes", rec.Code)
		}
	})

	t.Run("InvalidJSONRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte("{nope")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for bad JSON", rec.Code)
		}
	})
}

func TestTranscribeEndpoint(t *testing.T) {
	s := newTestServer()

	t.Run("Fixture", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/transcribe", map[string]any{
			"polyphonic": true,
			"frames":     [][]int{{60, 64, 67}, {57, 60, 64}},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var body struct {
			ID     string           `json:"id"`
			Result *symbolic.Result `json:"result"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Result == nil || len(body.Result.DetectedChords) != 2 {
			t.Errorf("result = %+v", body.Result)
		}
	})

	t.Run("InvalidFrameRejected", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/transcribe", map[string]any{
			"frames": [][]int{{60, 200}},
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestResultEndpoint(t *testing.T) {
	s := newTestServer()

	t.Run("RoundTrip", func(t *testing.T) {
		id := s.results.Add(&StoredResult{Transcription: &symbolic.Result{EventCount: 5}})

		rec := doJSON(t, s, http.MethodGet, "/result/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var stored StoredResult
		if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
			t.Fatal(err)
		}
		if stored.ID != id || stored.Transcription.EventCount != 5 {
			t.Errorf("stored = %+v", stored)
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/result/not-there", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
