package domain

import "errors"

var (
	// ErrInvalidStatus status is not ONLINE, AWAY or DO_NOT_DISTURB
	ErrInvalidStatus = errors.New("invalid status")
	// ErrNotRoomMember user is not a persisted member of the room
	ErrNotRoomMember = errors.New("not a room member")
	// ErrMessageNotFound message does not exist in the room
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotMessageOwner only the sender may edit or delete a message
	ErrNotMessageOwner = errors.New("not the message owner")
	// ErrEmptyContent message content is blank
	ErrEmptyContent = errors.New("message content is empty")
)
