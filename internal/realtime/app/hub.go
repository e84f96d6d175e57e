package app

import (
	"context"
	"sync"
	"time"

	"trading_hub/internal/realtime/domain"
	"trading_hub/internal/realtime/repository"
	"trading_hub/pkg/logger"

	"go.uber.org/zap"
)

// Hub emit events to connections.
// Emissions are serialized so every recipient observes them in one order.
type Hub struct {
	registry *ConnectionRegistry
	rooms    *RoomRouter

	emitMu sync.Mutex

	mirror   repository.EventMirror
	mirrorCh chan domain.MirroredEvent
	now      func() time.Time
}

// NewHub create Hub, mirror may be nil
func NewHub(registry *ConnectionRegistry, rooms *RoomRouter, mirror repository.EventMirror, queueSize int) *Hub {
	h := &Hub{
		registry: registry,
		rooms:    rooms,
		mirror:   mirror,
		now:      time.Now,
	}
	if mirror != nil {
		if queueSize <= 0 {
			queueSize = 1024
		}
		h.mirrorCh = make(chan domain.MirroredEvent, queueSize)
	}
	return h
}

// Broadcast every live connection, returns how many accepted the event
func (h *Hub) Broadcast(resp domain.WSResponse) int {
	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	sent := 0
	for _, s := range h.registry.All() {
		if s.Send(resp) {
			sent++
		}
	}
	h.offer(domain.ScopeBroadcast, "", resp)
	return sent
}

// EmitToRoom connections joined to roomID, returns the live joined connection ids.
// Joined ids without a registered sink are skipped.
func (h *Hub) EmitToRoom(roomID string, resp domain.WSResponse) []string {
	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	conns := h.rooms.Connections(roomID)
	active := make([]string, 0, len(conns))
	for _, id := range conns {
		s, ok := h.registry.Lookup(id)
		if !ok {
			continue
		}
		active = append(active, id)
		if !s.Send(resp) {
			logger.Log.Debug("room event dropped", zap.String("conn", id), zap.String("room", roomID))
		}
	}
	h.offer(domain.ScopeRoom, roomID, resp)
	return active
}

// EmitToUser every connection of userID, returns how many accepted the event
func (h *Hub) EmitToUser(userID string, resp domain.WSResponse) int {
	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	sent := 0
	for _, s := range h.registry.ConnectionsOf(userID) {
		if s.Send(resp) {
			sent++
		}
	}
	h.offer(domain.ScopeUser, userID, resp)
	return sent
}

// EmitToConnection a single connection, never mirrored
func (h *Hub) EmitToConnection(connID string, resp domain.WSResponse) bool {
	s, ok := h.registry.Lookup(connID)
	if !ok {
		return false
	}
	return s.Send(resp)
}

// ActiveUsers owners of the given connections
func (h *Hub) ActiveUsers(connIDs []string) map[string]struct{} {
	users := make(map[string]struct{}, len(connIDs))
	for _, id := range connIDs {
		if u, ok := h.registry.UserOf(id); ok {
			users[u] = struct{}{}
		}
	}
	return users
}

func (h *Hub) offer(scope domain.Scope, target string, resp domain.WSResponse) {
	if h.mirrorCh == nil {
		return
	}
	evt := domain.MirroredEvent{Scope: scope, Target: target, Event: resp, EmittedAt: h.now().UnixMilli()}
	select {
	case h.mirrorCh <- evt:
	default:
		logger.Log.Warn("mirror queue full, event dropped", zap.String("scope", string(scope)), zap.String("action", string(resp.Action)))
	}
}

// RunMirror drain the mirror queue until ctx is done
func (h *Hub) RunMirror(ctx context.Context) {
	if h.mirrorCh == nil {
		return
	}
	for {
		select {
		case evt := <-h.mirrorCh:
			if err := h.mirror.Publish(ctx, evt); err != nil {
				logger.Log.Warn("mirror publish failed", zap.String("action", string(evt.Event.Action)), zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
