package app

import (
	"sort"
	"sync"
)

// ConnectionRegistry live connections indexed by connection id and by user
type ConnectionRegistry struct {
	mu     sync.RWMutex
	byConn map[string]Sink
	byUser map[string]map[string]Sink

	// epochs 每段上線期間一個遞增編號, 0 保留給離線
	seq    uint64
	epochs map[string]uint64
}

// NewConnectionRegistry create ConnectionRegistry
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		byConn: make(map[string]Sink),
		byUser: make(map[string]map[string]Sink),
		epochs: make(map[string]uint64),
	}
}

// Register add connID for userID, first when it is the user's first live connection.
// epoch identifies the online period the connection belongs to, a new one starts on every first connection.
// A connID that is already registered is left untouched and returns (0, false).
func (r *ConnectionRegistry) Register(userID, connID string, sink Sink) (epoch uint64, first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[connID]; ok {
		return 0, false
	}
	r.byConn[connID] = sink

	conns, ok := r.byUser[userID]
	if !ok {
		conns = make(map[string]Sink)
		r.byUser[userID] = conns
		r.seq++
		r.epochs[userID] = r.seq
	}
	conns[connID] = sink
	return r.epochs[userID], len(conns) == 1
}

// Unregister remove connID, last reports whether its user has no live connection left.
// Unknown or already removed ids return ("", false).
func (r *ConnectionRegistry) Unregister(connID string) (userID string, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sink, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)

	userID = sink.UserID()
	conns := r.byUser[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byUser, userID)
		delete(r.epochs, userID)
		return userID, true
	}
	return userID, false
}

// IsOnline user holds at least one live connection
func (r *ConnectionRegistry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// Epoch current online period of userID, false when offline
func (r *ConnectionRegistry) Epoch(userID string) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.epochs[userID]
	return e, ok
}

// OnlineUsers sorted ids of users holding a live connection
func (r *ConnectionRegistry) OnlineUsers() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		users = append(users, id)
	}
	r.mu.RUnlock()

	sort.Strings(users)
	return users
}

// ConnectionsOf live sinks of one user
func (r *ConnectionRegistry) ConnectionsOf(userID string) []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]Sink, 0, len(r.byUser[userID]))
	for _, s := range r.byUser[userID] {
		sinks = append(sinks, s)
	}
	return sinks
}

// Lookup the sink of a connection
func (r *ConnectionRegistry) Lookup(connID string) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byConn[connID]
	return s, ok
}

// UserOf the owner of a connection
func (r *ConnectionRegistry) UserOf(connID string) (string, bool) {
	s, ok := r.Lookup(connID)
	if !ok {
		return "", false
	}
	return s.UserID(), true
}

// All every live sink
func (r *ConnectionRegistry) All() []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]Sink, 0, len(r.byConn))
	for _, s := range r.byConn {
		sinks = append(sinks, s)
	}
	return sinks
}
