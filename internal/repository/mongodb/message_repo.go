package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleet_tracker/internal/models"
)

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection("messages")}
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return nil
}

func (r *MessageRepository) ListByDriver(ctx context.Context, driverID primitive.ObjectID) ([]models.Message, error) {
	filter := bson.M{"to_driver_id": driverID}
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}
