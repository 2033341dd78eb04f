package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	enginesignal "github.com/DaisyQuest/Transcriberator/internal/signal"
	"github.com/DaisyQuest/Transcriberator/internal/symbolic"
)

// StoredResult is one finished analysis or transcription, retrievable by id.
type StoredResult struct {
	ID            string                             `json:"id"`
	Profile       *enginesignal.AudioAnalysisProfile `json:"profile,omitempty"`
	Transcription *symbolic.Result                   `json:"transcription,omitempty"`
	CreatedAt     time.Time                          `json:"created_at"`
}

// ResultStore keeps finished results in memory, keyed by uuid.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]*StoredResult
}

// NewResultStore creates an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]*StoredResult)}
}

// Add stores a result and returns its generated id.
func (s *ResultStore) Add(result *StoredResult) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result.ID = uuid.NewString()
	result.CreatedAt = time.Now().UTC()
	s.results[result.ID] = result
	return result.ID
}

// Get retrieves a result by id.
func (s *ResultStore) Get(id string) (*StoredResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	return r, ok
}
