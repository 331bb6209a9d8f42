package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/models"
)

type MessageRepository struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MessageRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Message
	for _, m := range r.messages {
		if m.ToDriverID == driverID {
			out = append(out, m)
		}
	}
	return out, nil
}
