package app

import "trading_hub/internal/realtime/domain"

// Sink outbound side of one live connection
type Sink interface {
	ID() string
	UserID() string
	// Send enqueue without blocking, false when the event was dropped
	Send(resp domain.WSResponse) bool
}
