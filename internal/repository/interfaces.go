package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/models"
)

var (
	// ErrNotFound means the identifier resolved to no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate means a unique constraint (username) was violated.
	ErrDuplicate = errors.New("duplicate key")
	// ErrNotMatched means a conditional update found no document satisfying
	// its precondition — either the document is gone or another writer got
	// there first.
	ErrNotMatched = errors.New("conditional update matched no document")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListAvailableDrivers(ctx context.Context) ([]models.User, error)

	// ClaimTrip atomically sets active_trip_id on the driver, succeeding
	// only while it is unset. Returns ErrNotMatched when the driver is
	// missing or already occupied.
	ClaimTrip(ctx context.Context, driverID, tripID primitive.ObjectID) (*models.User, error)
	// UnclaimTrip clears active_trip_id only, rolling back a claim whose
	// trip never went through. The driver's location is left alone.
	UnclaimTrip(ctx context.Context, driverID primitive.ObjectID) error
	// ReleaseTrip clears active_trip_id and location, returning the driver
	// to the available pool after a finished trip.
	ReleaseTrip(ctx context.Context, driverID primitive.ObjectID) error
	UpdateLocation(ctx context.Context, driverID primitive.ObjectID, p models.GeoPoint) error
}

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error)
	List(ctx context.Context) ([]models.Trip, error)
	ListByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error)

	// The Mark* methods are conditional on the trip being in the expected
	// prior status, so a lost race surfaces as ErrNotMatched instead of a
	// skipped or regressed state.
	MarkAssigned(ctx context.Context, tripID, driverID primitive.ObjectID, driverName string) error
	MarkStarted(ctx context.Context, tripID primitive.ObjectID, at time.Time) error
	MarkCompleted(ctx context.Context, tripID primitive.ObjectID, at time.Time) error
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	List(ctx context.Context) ([]models.Vehicle, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type StopRepository interface {
	Create(ctx context.Context, stop *models.Stop) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Stop, error)
	List(ctx context.Context) ([]models.Stop, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]models.Message, error)
}
