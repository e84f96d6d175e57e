package app

import (
	"context"
	"fmt"
	"sync"

	"trading_hub/internal/realtime/domain"
	"trading_hub/internal/realtime/repository"
	"trading_hub/pkg/logger"

	"go.uber.org/zap"
)

// PresenceTracker derive online state from the registry and broadcast deltas
type PresenceTracker struct {
	registry   *ConnectionRegistry
	hub        *Hub
	statusRepo repository.StatusRepository

	// mu orders cache updates with their broadcasts
	mu    sync.Mutex
	cache map[string]cachedStatus
}

// cachedStatus status known for one online period of a user
type cachedStatus struct {
	status domain.Status
	epoch  uint64
}

// NewPresenceTracker create PresenceTracker
func NewPresenceTracker(registry *ConnectionRegistry, hub *Hub, statusRepo repository.StatusRepository) *PresenceTracker {
	return &PresenceTracker{
		registry:   registry,
		hub:        hub,
		statusRepo: statusRepo,
		cache:      make(map[string]cachedStatus),
	}
}

// Connect register sink for userID, user.online is broadcast on the first connection.
// A status set while the lookup was in flight wins over the looked up value.
func (p *PresenceTracker) Connect(ctx context.Context, userID string, sink Sink) {
	epoch, first := p.registry.Register(userID, sink.ID(), sink)
	if !first {
		return
	}

	status, err := p.statusRepo.FindStatus(ctx, userID)
	if err != nil {
		logger.Log.Warn("status lookup failed, default ONLINE", zap.String("userID", userID), zap.Error(err))
	}
	if status == "" {
		status = domain.StatusOnline
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// 查詢期間已離線, 或已是下一段上線期間
	if cur, ok := p.registry.Epoch(userID); !ok || cur != epoch {
		return
	}
	if c, ok := p.cache[userID]; ok && c.epoch == epoch {
		status = c.status
	}
	p.cache[userID] = cachedStatus{status: status, epoch: epoch}
	p.hub.Broadcast(domain.Event(domain.UserOnline, domain.UserPresence{UserID: userID, Status: status}))
}

// Disconnect unregister connID, user.offline is broadcast when it was the last connection.
// Safe to call more than once.
func (p *PresenceTracker) Disconnect(connID string) {
	userID, last := p.registry.Unregister(connID)
	if !last {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registry.IsOnline(userID) {
		return
	}
	delete(p.cache, userID)
	p.hub.Broadcast(domain.Event(domain.UserOffline, domain.UserPresence{UserID: userID}))
}

// SetStatus persist then broadcast user.status.changed, nothing is broadcast on failure
func (p *PresenceTracker) SetStatus(ctx context.Context, userID, raw string) (domain.Status, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return "", err
	}
	if err := p.statusRepo.SaveStatus(ctx, userID, status); err != nil {
		return "", fmt.Errorf("set status: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if epoch, ok := p.registry.Epoch(userID); ok {
		p.cache[userID] = cachedStatus{status: status, epoch: epoch}
	}
	p.hub.Broadcast(domain.Event(domain.StatusChanged, domain.UserPresence{UserID: userID, Status: status}))
	return status, nil
}

// Snapshot online users and their statuses
func (p *PresenceTracker) Snapshot() domain.PresenceSnapshot {
	users := p.registry.OnlineUsers()

	p.mu.Lock()
	defer p.mu.Unlock()
	statuses := make(map[string]domain.Status, len(users))
	for _, u := range users {
		statuses[u] = p.current(u)
	}
	return domain.PresenceSnapshot{UserIDs: users, Statuses: statuses}
}

// Status of one user, online false when no connection is live
func (p *PresenceTracker) Status(userID string) (domain.Status, bool) {
	if !p.registry.IsOnline(userID) {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current(userID), true
}

// current cached status of the live online period, ONLINE until known. Caller holds mu.
func (p *PresenceTracker) current(userID string) domain.Status {
	c, ok := p.cache[userID]
	if !ok {
		return domain.StatusOnline
	}
	if epoch, online := p.registry.Epoch(userID); !online || epoch != c.epoch {
		return domain.StatusOnline
	}
	return c.status
}
