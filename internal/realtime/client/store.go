package client

import (
	"fmt"
	"sort"
	"sync"

	"trading_hub/internal/realtime/domain"

	"github.com/goccy/go-json"
)

// State of one tab's connection
type State int

const (
	// Disconnected no socket
	Disconnected State = iota
	// Connecting dialing
	Connecting
	// AwaitingSnapshot connected, presence snapshot requested
	AwaitingSnapshot
	// Ready snapshot applied, presence is fresh
	Ready
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case AwaitingSnapshot:
		return "awaiting-snapshot"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Frame server event as received on the wire
type Frame struct {
	Action  domain.Action   `json:"action"`
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Store in memory mirror of presence, unread and DM state for one tab
type Store struct {
	mu sync.RWMutex

	self       string
	state      State
	online     map[string]struct{}
	statuses   map[string]domain.Status
	unread     map[string]int
	dms        map[string]domain.DMSummary
	messages   map[string][]domain.ChatMessage
	activeRoom string

	onChange func(domain.Action)
}

// NewStore create Store for the signed in user
func NewStore(self string) *Store {
	return &Store{
		self:     self,
		online:   map[string]struct{}{},
		statuses: map[string]domain.Status{},
		unread:   map[string]int{},
		dms:      map[string]domain.DMSummary{},
		messages: map[string][]domain.ChatMessage{},
	}
}

// OnChange called after every applied event, outside the store lock
func (s *Store) OnChange(fn func(domain.Action)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State current connection state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// PresenceStale online data may be outdated until the next snapshot
func (s *Store) PresenceStale() bool {
	return s.State() != Ready
}

// Apply one server frame, failed acknowledgements are ignored
func (s *Store) Apply(f Frame) error {
	if !f.Success {
		return nil
	}

	var err error
	s.mu.Lock()
	switch f.Action {
	case domain.OnlineUsers:
		var snap domain.PresenceSnapshot
		if err = json.Unmarshal(f.Payload, &snap); err == nil {
			s.online = make(map[string]struct{}, len(snap.UserIDs))
			s.statuses = make(map[string]domain.Status, len(snap.UserIDs))
			for _, u := range snap.UserIDs {
				s.online[u] = struct{}{}
				if st, ok := snap.Statuses[u]; ok {
					s.statuses[u] = st
				} else {
					s.statuses[u] = domain.StatusOnline
				}
			}
		}

	case domain.UserOnline, domain.StatusChanged:
		var p domain.UserPresence
		if err = json.Unmarshal(f.Payload, &p); err == nil {
			if f.Action == domain.UserOnline {
				s.online[p.UserID] = struct{}{}
			}
			if p.Status == "" {
				p.Status = domain.StatusOnline
			}
			s.statuses[p.UserID] = p.Status
		}

	case domain.UserOffline:
		var p domain.UserPresence
		if err = json.Unmarshal(f.Payload, &p); err == nil {
			delete(s.online, p.UserID)
			delete(s.statuses, p.UserID)
		}

	case domain.NotifyUnread:
		var n domain.Notification
		if err = json.Unmarshal(f.Payload, &n); err == nil && n.RoomID != s.activeRoom {
			s.unread[n.RoomID] = n.UnreadCount
		}

	case domain.DMActivated:
		var dm domain.DMSummary
		if err = json.Unmarshal(f.Payload, &dm); err == nil {
			s.dms[dm.RoomID] = dm
		}

	case domain.DMHidden:
		var ref domain.DMRef
		if err = json.Unmarshal(f.Payload, &ref); err == nil {
			delete(s.dms, ref.RoomID)
		}

	case domain.NewMessage:
		var msg domain.ChatMessage
		if err = json.Unmarshal(f.Payload, &msg); err == nil && s.indexOf(msg.RoomID, msg.ID) < 0 {
			s.messages[msg.RoomID] = append(s.messages[msg.RoomID], msg)
		}

	case domain.MessageEdited:
		var msg domain.ChatMessage
		if err = json.Unmarshal(f.Payload, &msg); err == nil {
			if i := s.indexOf(msg.RoomID, msg.ID); i >= 0 {
				s.messages[msg.RoomID][i] = msg
			}
		}

	case domain.MessageDeleted:
		var ref domain.MessageRef
		if err = json.Unmarshal(f.Payload, &ref); err == nil {
			if i := s.indexOf(ref.RoomID, ref.ID); i >= 0 {
				msgs := s.messages[ref.RoomID]
				s.messages[ref.RoomID] = append(msgs[:i:i], msgs[i+1:]...)
			}
		}
	}
	fn := s.onChange
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("apply %s: %w", f.Action, err)
	}
	if fn != nil {
		fn(f.Action)
	}
	return nil
}

func (s *Store) indexOf(roomID, messageID string) int {
	for i, m := range s.messages[roomID] {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}

// SetActiveRoom navigation completed, the room's badge is cleared locally
func (s *Store) SetActiveRoom(roomID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.activeRoom
	s.activeRoom = roomID
	if roomID != "" {
		delete(s.unread, roomID)
	}
	return prev
}

// ActiveRoom the room the tab is viewing, "" for none
func (s *Store) ActiveRoom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeRoom
}

// LoadMessages seed a room with a page read from storage, oldest first
func (s *Store) LoadMessages(roomID string, msgs []domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[roomID] = append([]domain.ChatMessage(nil), msgs...)
}

// SetUnread seed counters from an authoritative read
func (s *Store) SetUnread(counts map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = make(map[string]int, len(counts))
	for room, n := range counts {
		if room != s.activeRoom && n > 0 {
			s.unread[room] = n
		}
	}
}

// IsOnline as last seen
func (s *Store) IsOnline(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.online[userID]
	return ok
}

// OnlineUsers sorted
func (s *Store) OnlineUsers() []string {
	s.mu.RLock()
	users := make([]string, 0, len(s.online))
	for u := range s.online {
		users = append(users, u)
	}
	s.mu.RUnlock()
	sort.Strings(users)
	return users
}

// Status of an online user
func (s *Store) Status(userID string) (domain.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[userID]
	return st, ok
}

// Unread badge of a room
func (s *Store) Unread(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread[roomID]
}

// UnreadCounts copy of every non zero badge
func (s *Store) UnreadCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int, len(s.unread))
	for room, n := range s.unread {
		if n > 0 {
			counts[room] = n
		}
	}
	return counts
}

// DMs active direct message list sorted by room id
func (s *Store) DMs() []domain.DMSummary {
	s.mu.RLock()
	list := make([]domain.DMSummary, 0, len(s.dms))
	for _, dm := range s.dms {
		list = append(list, dm)
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].RoomID < list[j].RoomID })
	return list
}

// Messages loaded for a room
func (s *Store) Messages(roomID string) []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ChatMessage(nil), s.messages[roomID]...)
}
