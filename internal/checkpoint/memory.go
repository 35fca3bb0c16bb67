package checkpoint

import "github.com/reva-ai/extract-cli/internal/model"

// MemoryStore is an in-memory Store for tests and dry runs. Flush is a
// no-op beyond counting, unless FlushErr is set.
type MemoryStore struct {
	state *State

	// Seed is installed as the loaded state, simulating a prior run.
	Seed map[string]model.ExtractionResult
	// FlushErr, when set, is returned by every Flush.
	FlushErr error
	// Flushes counts Flush calls.
	Flushes int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: NewState()}
}

func (s *MemoryStore) Load() *State {
	s.state = NewState()
	for id, r := range s.Seed {
		s.state.Results[id] = r
	}
	return s.state
}

func (s *MemoryStore) Record(result model.ExtractionResult) {
	s.state.Results[result.RecordID] = result
}

func (s *MemoryStore) Flush() error {
	s.Flushes++
	return s.FlushErr
}

func (s *MemoryStore) Close() error { return nil }
