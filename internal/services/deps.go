package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/models"
)

// SearchSyncer schedules search index maintenance after record store writes.
// Implementations must not block on the index itself.
type SearchSyncer interface {
	ProductUpserted(ctx context.Context, productID primitive.ObjectID) error
	ProductSold(ctx context.Context, productID primitive.ObjectID) error
	ProductRemoved(ctx context.Context, productIDs ...primitive.ObjectID) error
}

// ChatScheduler schedules the chat channel bootstrap for an accepted swap.
type ChatScheduler interface {
	ScheduleChat(ctx context.Context, swap *models.Swap) error
}

// EventPublisher appends domain events to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}
