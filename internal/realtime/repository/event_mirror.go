package repository

import (
	"context"

	"trading_hub/internal/realtime/domain"
)

// EventMirror republish delivered events to an external bus, best effort
type EventMirror interface {
	Publish(ctx context.Context, evt domain.MirroredEvent) error
	Close() error
}

// NopMirror discard every event
type NopMirror struct{}

// Publish do nothing
func (NopMirror) Publish(context.Context, domain.MirroredEvent) error { return nil }

// Close do nothing
func (NopMirror) Close() error { return nil }
