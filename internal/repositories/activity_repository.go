package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stackdeck/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrActivityNotFound is returned when an activity id resolves to nothing.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityRepository defines the interface for the domain event log.
// Entries are append-only and never deleted; the processed flag flips
// false to true exactly once.
type ActivityRepository interface {
	Record(ctx context.Context, activity *models.Activity) (string, error)
	GetActivityByID(ctx context.Context, id string) (*models.Activity, error)
	// MarkProcessed flips the processed flag and reports whether this
	// call performed the flip.
	MarkProcessed(ctx context.Context, id string) (bool, error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

// Record appends an activity to the log and returns its id
func (r *MongoActivityRepository) Record(ctx context.Context, activity *models.Activity) (string, error) {
	activity.ID = primitive.NewObjectID()
	activity.Processed = false
	activity.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		return "", err
	}
	return activity.ID.Hex(), nil
}

// GetActivityByID retrieves an activity by its hex id
func (r *MongoActivityRepository) GetActivityByID(ctx context.Context, id string) (*models.Activity, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid activity ID format: %w", err)
	}

	var activity models.Activity
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&activity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// MarkProcessed atomically flips processed from false to true
func (r *MongoActivityRepository) MarkProcessed(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid activity ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "processed": false},
		bson.M{"$set": bson.M{"processed": true}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
