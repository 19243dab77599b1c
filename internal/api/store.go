package api

import (
	"sync"
)

// DefaultStoreLimit bounds how many finished runs are kept for GET.
const DefaultStoreLimit = 256

// RunStore keeps the most recent run summaries, oldest evicted first.
type RunStore struct {
	mu    sync.Mutex
	limit int
	order []string
	runs  map[string]RunResponse
}

func NewRunStore(limit int) *RunStore {
	if limit <= 0 {
		limit = DefaultStoreLimit
	}
	return &RunStore{
		limit: limit,
		runs:  make(map[string]RunResponse),
	}
}

// Put stores resp without its values.
func (s *RunStore) Put(resp RunResponse) {
	resp.Values = nil
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[resp.ID]; !ok {
		s.order = append(s.order, resp.ID)
	}
	s.runs[resp.ID] = resp
	for len(s.order) > s.limit {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *RunStore) Get(id string) (RunResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.runs[id]
	return resp, ok
}

func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}
