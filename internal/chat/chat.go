// Package chat bootstraps the conversation channel between the two parties
// of an accepted swap.
package chat

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"swappy/backend/internal/db"
	"swappy/backend/internal/models"
)

// ChannelID returns "<lower id>_<higher id>", the same for either argument order.
func ChannelID(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if x > y {
		x, y = y, x
	}
	return x + "_" + y
}

type IChatService interface {
	EnsureChannel(ctx context.Context, swapID, buyerID, sellerID primitive.ObjectID) (*models.ChatChannel, error)
}

type chatService struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewChatService(database *mongo.Database) IChatService {
	return &chatService{coll: database.Collection(db.ChatsCollection), now: time.Now}
}

// EnsureChannel creates the channel on first call and returns the existing
// one on every later call. An existing channel keeps its original swap_id.
func (s *chatService) EnsureChannel(ctx context.Context, swapID, buyerID, sellerID primitive.ObjectID) (*models.ChatChannel, error) {
	id := ChannelID(buyerID, sellerID)
	now := s.now().UTC()

	update := bson.M{"$setOnInsert": bson.M{
		"participants":      bson.A{buyerID, sellerID},
		"swap_id":           swapID,
		"last_message":      "",
		"last_message_time": now,
		"created_at":        now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var channel models.ChatChannel
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&channel); err != nil {
		return nil, fmt.Errorf("failed to ensure chat channel %s: %w", id, err)
	}
	return &channel, nil
}
