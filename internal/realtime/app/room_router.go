package app

import (
	"sort"
	"sync"
)

// RoomRouter which connections currently view which rooms.
// Membership is per connection, not per user.
type RoomRouter struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]struct{} // room -> conns
	joined map[string]map[string]struct{} // conn -> rooms
}

// NewRoomRouter create RoomRouter
func NewRoomRouter() *RoomRouter {
	return &RoomRouter{
		rooms:  make(map[string]map[string]struct{}),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join add connID to roomID, false when it was already joined
func (r *RoomRouter) Join(connID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.rooms[roomID]
	if !ok {
		conns = make(map[string]struct{})
		r.rooms[roomID] = conns
	}
	if _, ok := conns[connID]; ok {
		return false
	}
	conns[connID] = struct{}{}

	rooms, ok := r.joined[connID]
	if !ok {
		rooms = make(map[string]struct{})
		r.joined[connID] = rooms
	}
	rooms[roomID] = struct{}{}
	return true
}

// Leave remove connID from roomID, false when it was not joined
func (r *RoomRouter) Leave(connID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(connID, roomID)
}

func (r *RoomRouter) leaveLocked(connID, roomID string) bool {
	conns, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := conns[connID]; !ok {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.rooms, roomID)
	}

	if rooms, ok := r.joined[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.joined, connID)
		}
	}
	return true
}

// LeaveAll drop every room of a closed connection, returns the rooms left
func (r *RoomRouter) LeaveAll(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := make([]string, 0, len(r.joined[connID]))
	for roomID := range r.joined[connID] {
		left = append(left, roomID)
	}
	for _, roomID := range left {
		r.leaveLocked(connID, roomID)
	}
	sort.Strings(left)
	return left
}

// Connections sorted ids joined to roomID
func (r *RoomRouter) Connections(roomID string) []string {
	r.mu.RLock()
	conns := make([]string, 0, len(r.rooms[roomID]))
	for id := range r.rooms[roomID] {
		conns = append(conns, id)
	}
	r.mu.RUnlock()

	sort.Strings(conns)
	return conns
}

// Rooms sorted rooms joined by connID
func (r *RoomRouter) Rooms(connID string) []string {
	r.mu.RLock()
	rooms := make([]string, 0, len(r.joined[connID]))
	for id := range r.joined[connID] {
		rooms = append(rooms, id)
	}
	r.mu.RUnlock()

	sort.Strings(rooms)
	return rooms
}

// IsJoined connID currently receives roomID events
func (r *RoomRouter) IsJoined(connID, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][connID]
	return ok
}
