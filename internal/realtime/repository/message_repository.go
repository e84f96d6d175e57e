package repository

import (
	"context"
	"errors"
	"fmt"

	"trading_hub/internal/realtime/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition chat message rows
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	FindByID(ctx context.Context, roomID, messageID string) (*domain.ChatMessage, error)
	UpdateContent(ctx context.Context, msg *domain.ChatMessage) error
	MarkDeleted(ctx context.Context, roomID, messageID string) error
	// FindBefore newest first, created_at strictly before the given unix milli
	FindBefore(ctx context.Context, roomID string, before int64, limit int64) ([]domain.ChatMessage, error)
}

type chatMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoChatMessageRepository create a MessageRepository
func NewMongoChatMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll: db.Collection("chat_messages"),
	}
}

// EnsureIndexes room + created_at index used by FindBefore
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("chat_messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *chatMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *chatMessageRepository) FindByID(ctx context.Context, roomID, messageID string) (*domain.ChatMessage, error) {
	var msg domain.ChatMessage
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID, "room_id": roomID, "deleted": bson.M{"$ne": true}}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

func (r *chatMessageRepository) UpdateContent(ctx context.Context, msg *domain.ChatMessage) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": msg.ID, "room_id": msg.RoomID},
		bson.M{"$set": bson.M{"content": msg.Content, "edited_at": msg.EditedAt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *chatMessageRepository) MarkDeleted(ctx context.Context, roomID, messageID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": messageID, "room_id": roomID},
		bson.M{"$set": bson.M{"deleted": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *chatMessageRepository) FindBefore(ctx context.Context, roomID string, before int64, limit int64) ([]domain.ChatMessage, error) {
	filter := bson.M{
		"room_id":    roomID,
		"created_at": bson.M{"$lt": before},
		"deleted":    bson.M{"$ne": true},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	messages := []domain.ChatMessage{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}
	return messages, nil
}
