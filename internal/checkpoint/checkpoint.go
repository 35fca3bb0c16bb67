// Package checkpoint persists per-record extraction outcomes so a run can
// resume safely after a crash or restart.
package checkpoint

import (
	"github.com/reva-ai/extract-cli/internal/model"
)

// State is the in-memory view of durable progress. The processed set is
// exactly the key set of Results.
type State struct {
	Results map[string]model.ExtractionResult
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Results: make(map[string]model.ExtractionResult)}
}

// Processed reports whether the record was already attempted, successfully
// or not.
func (s *State) Processed(id string) bool {
	_, ok := s.Results[id]
	return ok
}

// Store persists extraction results. Implementations are single-writer:
// the pipeline driver is the only mutator, and concurrent readers must go
// through the durable artifact, never this interface.
type Store interface {
	// Load reads durable state. A missing or corrupt artifact degrades to
	// an empty state (logged at the boundary); it never fails the run.
	Load() *State
	// Record adds or overwrites the result for its record id in the
	// in-memory view. Nothing is durable until Flush.
	Record(result model.ExtractionResult)
	// Flush atomically persists the in-memory view. Safe to call
	// repeatedly; a crash before or after a flush leaves the previous
	// artifact valid. A flush error is fatal to the run.
	Flush() error
	Close() error
}
