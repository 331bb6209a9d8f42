package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripStatus is the trip lifecycle state. Transitions only move forward:
//
//	pending -> assigned -> active -> completed
type TripStatus string

const (
	TripStatusPending   TripStatus = "pending"
	TripStatusAssigned  TripStatus = "assigned"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
)

// tripTransitions maps each status to the only status reachable from it.
// Completed is terminal and has no entry.
var tripTransitions = map[TripStatus]TripStatus{
	TripStatusPending:  TripStatusAssigned,
	TripStatusAssigned: TripStatusActive,
	TripStatusActive:   TripStatusCompleted,
}

// CanTransitionTo reports whether moving to next is a legal forward step.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	allowed, ok := tripTransitions[s]
	return ok && allowed == next
}

// TripStop is a snapshot of a Stop embedded on the trip at creation time,
// in the order the caller listed the stops.
type TripStop struct {
	StopID   primitive.ObjectID `json:"stop_id" bson:"stop_id"`
	Name     string             `json:"name" bson:"name"`
	Location GeoPoint           `json:"location" bson:"location"`
}

type Trip struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Details string             `json:"details" bson:"details"`
	Stops   []TripStop         `json:"stops" bson:"stops"`
	Status  TripStatus         `json:"status" bson:"status"`

	// AssignedDriverName is a write-time snapshot; it is not re-synced if
	// the driver is later renamed.
	AssignedDriverID   *primitive.ObjectID `json:"assigned_driver_id,omitempty" bson:"assigned_driver_id,omitempty"`
	AssignedDriverName string              `json:"assigned_driver_name,omitempty" bson:"assigned_driver_name,omitempty"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}
