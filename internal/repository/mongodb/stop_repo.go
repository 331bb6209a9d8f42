package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type StopRepository struct {
	col *mongo.Collection
}

func NewStopRepository(db *mongo.Database) *StopRepository {
	return &StopRepository{col: db.Collection("stops")}
}

func (r *StopRepository) Create(ctx context.Context, stop *models.Stop) error {
	if stop.CreatedAt.IsZero() {
		stop.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, stop)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		stop.ID = id
	}
	return nil
}

func (r *StopRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Stop, error) {
	var stop models.Stop
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&stop)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &stop, nil
}

func (r *StopRepository) List(ctx context.Context) ([]models.Stop, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stops []models.Stop
	if err := cursor.All(ctx, &stops); err != nil {
		return nil, err
	}
	if stops == nil {
		stops = []models.Stop{}
	}
	return stops, nil
}

func (r *StopRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
