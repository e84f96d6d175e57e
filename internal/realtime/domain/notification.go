package domain

import "time"

// Sender who triggered a notification
type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Notification unread alert, never persisted
type Notification struct {
	RoomID      string `json:"room_id"`
	UnreadCount int    `json:"unread_count"`
	MessageID   string `json:"message_id,omitempty"`
	Sender      Sender `json:"sender"`
}

// UnreadCounter persisted (user, room) -> count
type UnreadCounter struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	RoomID    string    `gorm:"primaryKey;size:64" json:"room_id"`
	Count     int       `gorm:"not null;default:0" json:"unread_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomMember persisted room membership, owned by the web application
type RoomMember struct {
	RoomID   string    `gorm:"primaryKey;size:64"`
	UserID   string    `gorm:"primaryKey;size:64;index"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}
