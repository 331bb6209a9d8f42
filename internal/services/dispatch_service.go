package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/geo"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflicting state")

	// ErrDriverUnavailable is a conflict: the driver already holds a trip.
	ErrDriverUnavailable = fmt.Errorf("%w: driver already has an active trip", ErrConflict)
)

// DispatchService owns the trip state machine and the driver availability
// flag. It is the only writer of Trip.Status and User.ActiveTripID; the
// controllers never touch either directly.
type DispatchService struct {
	users repository.UserRepository
	trips repository.TripRepository
	stops repository.StopRepository
}

func NewDispatchService(
	users repository.UserRepository,
	trips repository.TripRepository,
	stops repository.StopRepository,
) *DispatchService {
	return &DispatchService{
		users: users,
		trips: trips,
		stops: stops,
	}
}

// CreateTrip resolves the stop ids in the order the caller listed them and
// creates a pending trip with the resolved stops embedded as snapshots.
func (s *DispatchService) CreateTrip(ctx context.Context, details string, stopIDs []primitive.ObjectID) (*models.Trip, error) {
	if details == "" {
		return nil, fmt.Errorf("%w: details are required", ErrValidation)
	}
	if len(stopIDs) < 2 {
		return nil, fmt.Errorf("%w: a trip needs at least 2 stops", ErrValidation)
	}

	tripStops := make([]models.TripStop, 0, len(stopIDs))
	for _, id := range stopIDs {
		stop, err := s.stops.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: stop %s does not exist", ErrValidation, id.Hex())
			}
			return nil, err
		}
		tripStops = append(tripStops, models.TripStop{
			StopID:   stop.ID,
			Name:     stop.Name,
			Location: stop.Location,
		})
	}

	trip := &models.Trip{
		Details:   details,
		Stops:     tripStops,
		Status:    models.TripStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// AssignDriver moves a pending trip to assigned and claims the driver. The
// driver claim is a single conditional update, so two assignments racing for
// the same idle driver cannot both win. If the trip-side write then loses
// its own race, the claim is released again.
func (s *DispatchService) AssignDriver(ctx context.Context, tripID, driverID primitive.ObjectID) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip %s", ErrNotFound, tripID.Hex())
		}
		return nil, err
	}
	if !trip.Status.CanTransitionTo(models.TripStatusAssigned) {
		return nil, fmt.Errorf("%w: trip is %s, not awaiting assignment", ErrConflict, trip.Status)
	}

	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: driver %s", ErrNotFound, driverID.Hex())
		}
		return nil, err
	}
	if driver.Role != "driver" {
		return nil, fmt.Errorf("%w: user %s is not a driver", ErrValidation, driverID.Hex())
	}

	claimed, err := s.users.ClaimTrip(ctx, driverID, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, ErrDriverUnavailable
		}
		return nil, err
	}

	if err := s.trips.MarkAssigned(ctx, tripID, driverID, claimed.Name); err != nil {
		// The trip left pending between our read and the write. Undo only
		// the claim; the driver never ran this trip, so their last known
		// location stays intact.
		if relErr := s.users.UnclaimTrip(ctx, driverID); relErr != nil {
			logrus.WithError(relErr).WithField("driver_id", driverID.Hex()).
				Error("failed to release driver after lost assignment race")
		}
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, fmt.Errorf("%w: trip was assigned by someone else", ErrConflict)
		}
		return nil, err
	}

	return s.trips.GetByID(ctx, tripID)
}

// StartTrip moves an assigned trip to active and records the start time.
func (s *DispatchService) StartTrip(ctx context.Context, tripID primitive.ObjectID) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip %s", ErrNotFound, tripID.Hex())
		}
		return nil, err
	}
	if !trip.Status.CanTransitionTo(models.TripStatusActive) {
		return nil, fmt.Errorf("%w: cannot start a %s trip", ErrConflict, trip.Status)
	}

	if err := s.trips.MarkStarted(ctx, tripID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, fmt.Errorf("%w: cannot start a %s trip", ErrConflict, trip.Status)
		}
		return nil, err
	}
	return s.trips.GetByID(ctx, tripID)
}

// CompleteTrip moves an active trip to completed, then releases the driver:
// active_trip_id and location are both cleared so the driver rejoins the
// available pool with no stale point attached.
func (s *DispatchService) CompleteTrip(ctx context.Context, tripID, driverID primitive.ObjectID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: trip %s", ErrNotFound, tripID.Hex())
		}
		return err
	}
	if _, err := s.users.GetByID(ctx, driverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: driver %s", ErrNotFound, driverID.Hex())
		}
		return err
	}
	if !trip.Status.CanTransitionTo(models.TripStatusCompleted) {
		return fmt.Errorf("%w: cannot complete a %s trip", ErrConflict, trip.Status)
	}
	// The driver must be the one holding this trip; otherwise completing
	// trip A with driver B's id would free B while B's own trip still runs.
	if trip.AssignedDriverID == nil || *trip.AssignedDriverID != driverID {
		return fmt.Errorf("%w: trip is not held by driver %s", ErrConflict, driverID.Hex())
	}

	if err := s.trips.MarkCompleted(ctx, tripID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return fmt.Errorf("%w: cannot complete a %s trip", ErrConflict, trip.Status)
		}
		return err
	}

	if err := s.users.ReleaseTrip(ctx, driverID); err != nil {
		logrus.WithError(err).WithField("driver_id", driverID.Hex()).
			Error("trip completed but driver release failed")
		return err
	}
	return nil
}

// RecordDriverLocation overwrites the driver's last known point. Only the
// latest point is kept; there is no history.
func (s *DispatchService) RecordDriverLocation(ctx context.Context, driverID primitive.ObjectID, p models.GeoPoint) error {
	if !geo.ValidPoint(p) {
		return fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}
	if err := s.users.UpdateLocation(ctx, driverID, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: driver %s", ErrNotFound, driverID.Hex())
		}
		return err
	}
	return nil
}

// ActiveTrip is an active trip annotated with its driver's last known
// location and a GeoJSON rendering of the stop sequence for map clients.
type ActiveTrip struct {
	models.Trip
	CurrentLocation *models.GeoPoint `json:"current_location"`
	Path            string           `json:"path,omitempty"`
}

// ActiveTripsWithLocations joins active trips to their drivers' locations.
// The join lives here because the store has no native one.
func (s *DispatchService) ActiveTripsWithLocations(ctx context.Context) ([]ActiveTrip, error) {
	trips, err := s.trips.ListByStatus(ctx, models.TripStatusActive)
	if err != nil {
		return nil, err
	}

	out := make([]ActiveTrip, 0, len(trips))
	for _, trip := range trips {
		at := ActiveTrip{Trip: trip}

		if len(trip.Stops) >= 2 {
			points := make([]models.GeoPoint, 0, len(trip.Stops))
			for _, st := range trip.Stops {
				points = append(points, st.Location)
			}
			if path, err := geo.PathGeoJSON(points); err == nil {
				at.Path = path
			}
		}

		if trip.AssignedDriverID != nil {
			driver, err := s.users.GetByID(ctx, *trip.AssignedDriverID)
			switch {
			case err == nil:
				at.CurrentLocation = driver.Location
			case errors.Is(err, repository.ErrNotFound):
				logrus.WithField("trip_id", trip.ID.Hex()).
					Warn("active trip references a missing driver")
			default:
				return nil, err
			}
		}
		out = append(out, at)
	}
	return out, nil
}

// AvailableDrivers returns every driver with no active trip.
func (s *DispatchService) AvailableDrivers(ctx context.Context) ([]models.User, error) {
	return s.users.ListAvailableDrivers(ctx)
}

// DriverActiveTrip returns the driver's current trip, or nil when the
// driver is idle.
func (s *DispatchService) DriverActiveTrip(ctx context.Context, driverID primitive.ObjectID) (*models.Trip, error) {
	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: driver %s", ErrNotFound, driverID.Hex())
		}
		return nil, err
	}
	if driver.ActiveTripID == nil {
		return nil, nil
	}

	trip, err := s.trips.GetByID(ctx, *driver.ActiveTripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("driver_id", driverID.Hex()).
				Warn("driver points at a missing trip")
			return nil, nil
		}
		return nil, err
	}
	return trip, nil
}
