package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username string             `json:"username" bson:"username"`
	Password string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Name     string             `json:"name" bson:"name"`
	Role     string             `json:"role" bson:"role"` // "driver", "admin"
	Plate    string             `json:"plate,omitempty" bson:"plate,omitempty"`

	// ActiveTripID is set while the driver holds an assigned or active trip.
	// The dispatch service is the only writer.
	ActiveTripID *primitive.ObjectID `json:"active_trip_id,omitempty" bson:"active_trip_id,omitempty"`
	Location     *GeoPoint           `json:"location,omitempty" bson:"location,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// IsAvailable reports whether the driver can take a new trip.
func (u *User) IsAvailable() bool {
	return u.Role == "driver" && u.ActiveTripID == nil
}
