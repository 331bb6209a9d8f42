package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a plain lat/lng pair as sent by the clients.
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Stop is a named pickup/dropoff location. Stops are immutable once
// created; there is no update path.
type Stop struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Location  GeoPoint           `json:"location" bson:"location"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
