package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type VehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[primitive.ObjectID]models.Vehicle
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{vehicles: make(map[primitive.ObjectID]models.Vehicle)}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	r.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]models.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.vehicles, id)
	return nil
}
