package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	engineerrors "github.com/DaisyQuest/Transcriberator/internal/errors"
	enginesignal "github.com/DaisyQuest/Transcriberator/internal/signal"
	"github.com/DaisyQuest/Transcriberator/internal/symbolic"
)

// analyzeRequest is the JSON body for decoded-PCM analysis. Raw container
// bytes are posted directly as the request body instead.
type analyzeRequest struct {
	Samples    []int `json:"samples"`
	SampleRate int   `json:"sample_rate"`
	Channels   int   `json:"channels"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"model_version": symbolic.ModelVersion,
	})
}

// handleAnalyze accepts either a JSON sample buffer (application/json) or
// raw container bytes and returns the analysis profile with a result id.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var profile *enginesignal.AudioAnalysisProfile
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req analyzeRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		profile, err = s.analyzer.AnalyzeSamples(enginesignal.SampleBuffer{
			Samples:    req.Samples,
			SampleRate: req.SampleRate,
			Channels:   req.Channels,
		})
	} else {
		raw, readErr := io.ReadAll(r.Body)
		if readErr != nil {
			writeError(w, http.StatusBadRequest, "read body failed")
			return
		}
		profile, err = s.analyzer.AnalyzeBytes(raw)
	}

	if err != nil {
		if errors.Is(err, engineerrors.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("analysis failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	id := s.results.Add(&StoredResult{Profile: profile})
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"profile": profile,
	})
}

// handleTranscribe accepts a symbolic.Request fixture and returns the
// transcription result with a result id.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req symbolic.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SourceURI == "" {
		req.SourceURI = "api://transcribe"
	}

	result, err := s.worker.Process(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := s.results.Add(&StoredResult{Transcription: result})
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"result": result,
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, ok := s.results.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
