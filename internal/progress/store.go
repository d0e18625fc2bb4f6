package progress

import (
	"sync"
	"time"
)

// State is one search's progress snapshot as served to pollers.
type State struct {
	SearchID     string    `json:"search_id"`
	Status       string    `json:"status"`
	Current      int       `json:"current"`
	Total        int       `json:"total"`
	Percent      float64   `json:"percent"`
	CurrentMonth string    `json:"current_month"`
	RunningCount int       `json:"running_count"`
	Message      string    `json:"message"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Store tracks the progress of background searches keyed by search id.
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	states map[string]*State
}

func NewStore() *Store {
	return &Store{states: make(map[string]*State)}
}

// Start registers a search in the running state.
func (s *Store) Start(searchID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.states[searchID] = &State{
		SearchID:  searchID,
		Status:    StatusRunning,
		Total:     total,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Update advances a running search. Unknown ids are ignored; the search may
// already have been cleared by a competing request.
func (s *Store) Update(searchID string, current int, month string, runningCount int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[searchID]
	if !ok {
		return
	}
	st.Current = current
	if st.Total > 0 {
		st.Percent = float64(current) / float64(st.Total) * 100
	}
	st.CurrentMonth = month
	st.RunningCount = runningCount
	st.Message = message
	st.UpdatedAt = time.Now()
}

// Complete marks a search finished with its final record count.
func (s *Store) Complete(searchID string, totalCount int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[searchID]
	if !ok {
		return
	}
	st.Status = StatusComplete
	st.Current = st.Total
	st.Percent = 100
	st.RunningCount = totalCount
	st.Message = message
	st.UpdatedAt = time.Now()
}

// Fail marks a search failed.
func (s *Store) Fail(searchID string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[searchID]
	if !ok {
		return
	}
	st.Status = StatusFailed
	st.Error = errMsg
	st.UpdatedAt = time.Now()
}

// Get returns a copy of one search's state.
func (s *Store) Get(searchID string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[searchID]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Clear removes a search from the store.
func (s *Store) Clear(searchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, searchID)
}
