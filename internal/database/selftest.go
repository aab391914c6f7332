package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SelfTestCollection holds the synthetic documents written by SelfTest.
const SelfTestCollection = "tests"

// ErrSelfTestCleanup indicates the synthetic document could not be removed.
var ErrSelfTestCleanup = errors.New("self test document was not cleaned up")

// SelfTestReport summarises a successful connection self test.
type SelfTestReport struct {
	Database   string
	DocumentID string
}

type selfTestDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Timestamp time.Time          `bson:"timestamp"`
}

// SelfTest writes a synthetic document into the tests collection of db and deletes it again.
// It never touches feedback records.
func SelfTest(ctx context.Context, db *mongo.Database) (SelfTestReport, error) {
	report := SelfTestReport{Database: db.Name()}
	collection := db.Collection(SelfTestCollection)

	result, err := collection.InsertOne(ctx, selfTestDocument{
		Name:      "Connection Test",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return report, fmt.Errorf("save test document: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return report, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	report.DocumentID = id.Hex()

	deleted, err := collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return report, fmt.Errorf("delete test document: %w", err)
	}
	if deleted.DeletedCount != 1 {
		return report, ErrSelfTestCleanup
	}

	return report, nil
}
