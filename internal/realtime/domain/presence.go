package domain

import "strings"

// Status explicit presence status chosen by a user
type Status string

const (
	// StatusOnline default status of a connected user
	StatusOnline Status = "ONLINE"
	// StatusAway user is idle
	StatusAway Status = "AWAY"
	// StatusDoNotDisturb user muted notifications
	StatusDoNotDisturb Status = "DO_NOT_DISTURB"
)

// ParseStatus validate a status string, case insensitive
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusOnline:
		return StatusOnline, nil
	case StatusAway:
		return StatusAway, nil
	case StatusDoNotDisturb:
		return StatusDoNotDisturb, nil
	}
	return "", ErrInvalidStatus
}

// PresenceSnapshot online.users payload
type PresenceSnapshot struct {
	UserIDs  []string          `json:"user_ids"`
	Statuses map[string]Status `json:"statuses"`
}

// UserPresence user.online / user.offline / user.status.changed payload
type UserPresence struct {
	UserID string `json:"user_id"`
	Status Status `json:"status,omitempty"`
}
