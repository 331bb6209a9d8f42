package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type TripRepository struct {
	mu    sync.RWMutex
	trips map[primitive.ObjectID]models.Trip
}

func NewTripRepository() *TripRepository {
	return &TripRepository{trips: make(map[primitive.ObjectID]models.Trip)}
}

func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if trip.ID.IsZero() {
		trip.ID = primitive.NewObjectID()
	}
	r.trips[trip.ID] = *trip
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TripRepository) List(ctx context.Context) ([]models.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Trip, 0, len(r.trips))
	for _, t := range r.trips {
		out = append(out, t)
	}
	return out, nil
}

func (r *TripRepository) ListByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Trip
	for _, t := range r.trips {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TripRepository) MarkAssigned(ctx context.Context, tripID, driverID primitive.ObjectID, driverName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok || t.Status != models.TripStatusPending {
		return repository.ErrNotMatched
	}
	d := driverID
	t.Status = models.TripStatusAssigned
	t.AssignedDriverID = &d
	t.AssignedDriverName = driverName
	r.trips[tripID] = t
	return nil
}

func (r *TripRepository) MarkStarted(ctx context.Context, tripID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok || t.Status != models.TripStatusAssigned {
		return repository.ErrNotMatched
	}
	t.Status = models.TripStatusActive
	t.StartedAt = &at
	r.trips[tripID] = t
	return nil
}

func (r *TripRepository) MarkCompleted(ctx context.Context, tripID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[tripID]
	if !ok || t.Status != models.TripStatusActive {
		return repository.ErrNotMatched
	}
	t.Status = models.TripStatusCompleted
	t.CompletedAt = &at
	r.trips[tripID] = t
	return nil
}
