package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type StopRepository struct {
	mu    sync.RWMutex
	stops map[primitive.ObjectID]models.Stop
}

func NewStopRepository() *StopRepository {
	return &StopRepository{stops: make(map[primitive.ObjectID]models.Stop)}
}

func (r *StopRepository) Create(ctx context.Context, stop *models.Stop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stop.ID.IsZero() {
		stop.ID = primitive.NewObjectID()
	}
	r.stops[stop.ID] = *stop
	return nil
}

func (r *StopRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Stop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *StopRepository) List(ctx context.Context) ([]models.Stop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Stop, 0, len(r.stops))
	for _, s := range r.stops {
		out = append(out, s)
	}
	return out, nil
}

func (r *StopRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stops[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.stops, id)
	return nil
}
