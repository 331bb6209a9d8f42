package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type VehicleRepository struct {
	col *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{col: db.Collection("vehicles")}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, vehicle)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		vehicle.ID = id
	}
	return nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	return vehicles, nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
