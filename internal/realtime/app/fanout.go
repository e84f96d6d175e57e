package app

import "trading_hub/internal/realtime/domain"

// MessageFanout deliver message events to the connections joined to a room.
// At most once, no ack, no retry.
type MessageFanout struct {
	hub *Hub
}

// NewMessageFanout create MessageFanout
func NewMessageFanout(hub *Hub) *MessageFanout {
	return &MessageFanout{hub: hub}
}

// Deliver emit action to roomID, returns the active connection ids
func (f *MessageFanout) Deliver(roomID string, action domain.Action, payload interface{}) []string {
	return f.hub.EmitToRoom(roomID, domain.Event(action, payload))
}

// Created newMessage
func (f *MessageFanout) Created(msg *domain.ChatMessage) []string {
	return f.Deliver(msg.RoomID, domain.NewMessage, msg)
}

// Edited messageEdited
func (f *MessageFanout) Edited(msg *domain.ChatMessage) []string {
	return f.Deliver(msg.RoomID, domain.MessageEdited, msg)
}

// Deleted messageDeleted
func (f *MessageFanout) Deleted(ref domain.MessageRef) []string {
	return f.Deliver(ref.RoomID, domain.MessageDeleted, ref)
}
