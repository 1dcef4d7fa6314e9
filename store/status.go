package store

import "sync"

// Status is what the UI polls to render progress and per-row locks.
type Status struct {
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
	MutatingID string `json:"mutatingId,omitempty"`
}

type statusChannel struct {
	mu       sync.Mutex
	inflight int
	err      string
	mutating string
}

// begin marks an operation as running and clears the previous error.
func (s *statusChannel) begin() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()
}

func (s *statusChannel) end() {
	s.mu.Lock()
	if s.inflight > 0 {
		s.inflight--
	}
	s.mu.Unlock()
}

func (s *statusChannel) fail(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
}

// mutate records id as the row being updated and returns the func that clears it.
func (s *statusChannel) mutate(id string) func() {
	s.mu.Lock()
	s.mutating = id
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.mutating == id {
			s.mutating = ""
		}
		s.mu.Unlock()
	}
}

func (s *statusChannel) snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Loading:    s.inflight > 0,
		Error:      s.err,
		MutatingID: s.mutating,
	}
}
