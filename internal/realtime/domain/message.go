package domain

// ChatMessage persisted chat message, also the newMessage / messageEdited payload
type ChatMessage struct {
	ID         string `bson:"_id" json:"id"`
	RoomID     string `bson:"room_id" json:"room_id"`
	SenderID   string `bson:"sender_id" json:"sender_id"`
	SenderName string `bson:"sender_name" json:"sender_name"`
	Content    string `bson:"content" json:"content"`
	CreatedAt  int64  `bson:"created_at" json:"created_at"`
	EditedAt   int64  `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	Deleted    bool   `bson:"deleted,omitempty" json:"-"`
}

// MessageRef messageDeleted payload
type MessageRef struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id"`
}
