package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatChannel is the conversation opened between the two parties of an
// accepted swap.
type ChatChannel struct {
	ID              string               `bson:"_id" json:"id"`
	Participants    []primitive.ObjectID `bson:"participants" json:"participants"`
	SwapID          primitive.ObjectID   `bson:"swap_id" json:"swap_id"`
	LastMessage     string               `bson:"last_message" json:"last_message"`
	LastMessageTime time.Time            `bson:"last_message_time" json:"last_message_time"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
}
