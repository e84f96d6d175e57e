package domain

// Scope who an emitted event was addressed to
type Scope string

const (
	// ScopeBroadcast every live connection
	ScopeBroadcast Scope = "broadcast"
	// ScopeRoom connections joined to a room
	ScopeRoom Scope = "room"
	// ScopeUser connections of one user
	ScopeUser Scope = "user"
	// ScopeConnection a single connection
	ScopeConnection Scope = "connection"
)

// MirroredEvent copy of a delivered event republished for external consumers
type MirroredEvent struct {
	Scope     Scope      `json:"scope"`
	Target    string     `json:"target,omitempty"`
	Event     WSResponse `json:"event"`
	EmittedAt int64      `json:"emitted_at"`
}
