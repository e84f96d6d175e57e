package domain

// Action websocket event name
type Action string

const (
	// JoinRoom client subscribes its connection to a room channel
	JoinRoom Action = "joinRoom"
	// LeaveRoom client unsubscribes its connection from a room channel
	LeaveRoom Action = "leaveRoom"
	// GetUsers client asks for the presence snapshot
	GetUsers Action = "client.ready.get_users"
	// SetStatus client changes its explicit status
	SetStatus Action = "user.status.set"

	// OnlineUsers presence snapshot response
	OnlineUsers Action = "online.users"
	// UserOnline presence delta, first connection of a user
	UserOnline Action = "user.online"
	// UserOffline presence delta, last connection of a user closed
	UserOffline Action = "user.offline"
	// StatusChanged explicit status update
	StatusChanged Action = "user.status.changed"

	// NewMessage room delivery of a created message
	NewMessage Action = "newMessage"
	// MessageEdited room delivery of an edited message
	MessageEdited Action = "messageEdited"
	// MessageDeleted room delivery of a deleted message
	MessageDeleted Action = "messageDeleted"

	// NotifyUnread unread alert sent to a user's private channel
	NotifyUnread Action = "notification"
	// DMActivated direct message conversation became visible
	DMActivated Action = "dm.activated"
	// DMHidden direct message conversation was hidden
	DMHidden Action = "dm.hidden"

	// ErrorAction unknown or malformed frame
	ErrorAction Action = "error"
)

// WSRequest websocket Request
type WSRequest struct {
	Action string `json:"action"`
	RoomID string `json:"room_id,omitempty"`
	Status string `json:"status,omitempty"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  Action      `json:"action"`
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Event build a successful server event
func Event(action Action, payload interface{}) WSResponse {
	return WSResponse{Action: action, Success: true, Payload: payload}
}

// Failure build a failed response to a client request
func Failure(action Action, err error) WSResponse {
	return WSResponse{Action: action, Success: false, Error: err.Error()}
}

// RoomRef joinRoom / leaveRoom acknowledgement payload
type RoomRef struct {
	RoomID string `json:"room_id"`
}
