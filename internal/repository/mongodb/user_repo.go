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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *UserRepository) ListAvailableDrivers(ctx context.Context) ([]models.User, error) {
	// nil matches both an explicit null and a missing field
	return r.find(ctx, bson.M{"role": "driver", "active_trip_id": nil})
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// ClaimTrip sets active_trip_id in a single conditional update so two
// concurrent assignments can never both claim the same driver.
func (r *UserRepository) ClaimTrip(ctx context.Context, driverID, tripID primitive.ObjectID) (*models.User, error) {
	filter := bson.M{"_id": driverID, "active_trip_id": nil}
	update := bson.M{"$set": bson.M{"active_trip_id": tripID}}

	var user models.User
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotMatched
		}
		return nil, err
	}
	return &user, nil
}

// UnclaimTrip rolls back a claim without touching the driver's location.
func (r *UserRepository) UnclaimTrip(ctx context.Context, driverID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": driverID}, bson.M{"$set": bson.M{"active_trip_id": nil}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ReleaseTrip(ctx context.Context, driverID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"active_trip_id": nil, "location": nil}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": driverID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLocation(ctx context.Context, driverID primitive.ObjectID, p models.GeoPoint) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": driverID}, bson.M{"$set": bson.M{"location": p}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
