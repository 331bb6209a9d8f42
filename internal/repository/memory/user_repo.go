package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepository) ListAvailableDrivers(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.User
	for _, u := range r.users {
		if u.Role == "driver" && u.ActiveTripID == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

// ClaimTrip mirrors the mongo implementation's conditional
// find-one-and-update: the check and the write happen under one lock.
func (r *UserRepository) ClaimTrip(ctx context.Context, driverID, tripID primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[driverID]
	if !ok || u.ActiveTripID != nil {
		return nil, repository.ErrNotMatched
	}
	trip := tripID
	u.ActiveTripID = &trip
	r.users[driverID] = u
	return &u, nil
}

func (r *UserRepository) UnclaimTrip(ctx context.Context, driverID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ActiveTripID = nil
	r.users[driverID] = u
	return nil
}

func (r *UserRepository) ReleaseTrip(ctx context.Context, driverID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ActiveTripID = nil
	u.Location = nil
	r.users[driverID] = u
	return nil
}

func (r *UserRepository) UpdateLocation(ctx context.Context, driverID primitive.ObjectID, p models.GeoPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	loc := p
	u.Location = &loc
	r.users[driverID] = u
	return nil
}
