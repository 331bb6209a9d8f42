package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitDB loads the environment, connects to MongoDB and returns the database
// handle. Startup is connect-or-die: a bad URI or unreachable server ends
// the process here, before any route is registered.
func InitDB() *mongo.Database {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	uri := GetEnv("MONGO_URI", "mongodb://127.0.0.1:27017")
	dbName := GetEnv("MONGO_DB", "fleet_tracker")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("failed to create mongo client: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}

	db := client.Database(dbName)

	// Duplicate usernames must fail at the store, not in a check-then-act
	// read. The index makes register race-free.
	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Fatalf("failed to ensure username index: %v", err)
	}

	log.Println("✅ Connected to MongoDB")
	return db
}

// GetEnv reads an environment variable or returns the provided default
func GetEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}
