package domain

import "time"

// DMSummary dm.activated payload
type DMSummary struct {
	RoomID   string `json:"room_id"`
	PeerID   string `json:"peer_id"`
	PeerName string `json:"peer_name"`
}

// DMRef dm.hidden payload
type DMRef struct {
	RoomID string `json:"room_id"`
}

// DMVisibility whether a direct message conversation shows in a user's list
type DMVisibility struct {
	UserID    string `gorm:"primaryKey;size:64"`
	RoomID    string `gorm:"primaryKey;size:64;index"`
	PeerID    string `gorm:"size:64"`
	PeerName  string `gorm:"size:128"`
	Hidden    bool   `gorm:"not null;default:false"`
	UpdatedAt time.Time
}

// Summary dm.activated payload of this conversation
func (v DMVisibility) Summary() DMSummary {
	return DMSummary{RoomID: v.RoomID, PeerID: v.PeerID, PeerName: v.PeerName}
}
