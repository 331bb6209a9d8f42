// internal/models/vehicle.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vehicle struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Plate     string             `json:"plate" bson:"plate"`
	Model     string             `json:"model" bson:"model"`
	FuelType  string             `json:"fuel_type,omitempty" bson:"fuel_type,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
