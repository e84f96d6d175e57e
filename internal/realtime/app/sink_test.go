package app

import (
	"sync"

	"trading_hub/internal/realtime/domain"
)

// recordingSink in memory Sink keeping every accepted event
type recordingSink struct {
	id     string
	userID string
	limit  int

	mu     sync.Mutex
	events []domain.WSResponse
}

func newRecordingSink(id, userID string) *recordingSink {
	return &recordingSink{id: id, userID: userID}
}

func (s *recordingSink) ID() string     { return s.id }
func (s *recordingSink) UserID() string { return s.userID }

func (s *recordingSink) Send(resp domain.WSResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.events) >= s.limit {
		return false
	}
	s.events = append(s.events, resp)
	return true
}

func (s *recordingSink) Events() []domain.WSResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WSResponse(nil), s.events...)
}

// Count events with the given action
func (s *recordingSink) Count(action domain.Action) int {
	n := 0
	for _, e := range s.Events() {
		if e.Action == action {
			n++
		}
	}
	return n
}

func (s *recordingSink) Last() (domain.WSResponse, bool) {
	events := s.Events()
	if len(events) == 0 {
		return domain.WSResponse{}, false
	}
	return events[len(events)-1], true
}
