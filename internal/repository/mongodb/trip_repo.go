package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type TripRepository struct {
	col *mongo.Collection
}

func NewTripRepository(db *mongo.Database) *TripRepository {
	return &TripRepository{col: db.Collection("trips")}
}

func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, trip)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		trip.ID = id
	}
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	var trip models.Trip
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) List(ctx context.Context) ([]models.Trip, error) {
	return r.find(ctx, bson.M{})
}

func (r *TripRepository) ListByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *TripRepository) find(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}

// conditionalUpdate runs an update gated on the trip's current status, so
// the status can only ever move along the transition chain.
func (r *TripRepository) conditionalUpdate(ctx context.Context, tripID primitive.ObjectID, from models.TripStatus, set bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": tripID, "status": from}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotMatched
	}
	return nil
}

func (r *TripRepository) MarkAssigned(ctx context.Context, tripID, driverID primitive.ObjectID, driverName string) error {
	return r.conditionalUpdate(ctx, tripID, models.TripStatusPending, bson.M{
		"status":               models.TripStatusAssigned,
		"assigned_driver_id":   driverID,
		"assigned_driver_name": driverName,
	})
}

func (r *TripRepository) MarkStarted(ctx context.Context, tripID primitive.ObjectID, at time.Time) error {
	return r.conditionalUpdate(ctx, tripID, models.TripStatusAssigned, bson.M{
		"status":     models.TripStatusActive,
		"started_at": at,
	})
}

func (r *TripRepository) MarkCompleted(ctx context.Context, tripID primitive.ObjectID, at time.Time) error {
	return r.conditionalUpdate(ctx, tripID, models.TripStatusActive, bson.M{
		"status":       models.TripStatusCompleted,
		"completed_at": at,
	})
}
