package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a dispatcher note for a driver. Drivers poll for their
// messages; nothing is pushed.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	From       string             `json:"from" bson:"from"`
	ToDriverID primitive.ObjectID `json:"to_driver_id" bson:"to_driver_id"`
	Content    string             `json:"content" bson:"content"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
