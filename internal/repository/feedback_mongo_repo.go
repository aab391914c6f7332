package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/feedback-go-api/internal/models"
)

// feedbackDocument is the document shape stored in the feedback collection.
type feedbackDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FullName    string             `bson:"fullName"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"phone"`
	RollNo      string             `bson:"rollNo"`
	Branch      string             `bson:"branch"`
	Useful      string             `bson:"useful"`
	Rating      int                `bson:"rating"`
	Suggestions string             `bson:"suggestions"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func newFeedbackDocument(record models.Feedback) feedbackDocument {
	return feedbackDocument{
		FullName:    record.FullName,
		Email:       record.Email,
		Phone:       record.Phone,
		RollNo:      record.RollNo,
		Branch:      record.Branch,
		Useful:      record.Useful,
		Rating:      record.Rating,
		Suggestions: record.Suggestions,
		CreatedAt:   record.CreatedAt,
	}
}

func (d feedbackDocument) model() models.Feedback {
	return models.Feedback{
		ID:          d.ID.Hex(),
		FullName:    d.FullName,
		Email:       d.Email,
		Phone:       d.Phone,
		RollNo:      d.RollNo,
		Branch:      d.Branch,
		Useful:      d.Useful,
		Rating:      d.Rating,
		Suggestions: d.Suggestions,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type mongoFeedbackRepository struct {
	collection *mongo.Collection
}

// NewMongoFeedbackRepository constructs a repository backed by a MongoDB collection.
func NewMongoFeedbackRepository(collection *mongo.Collection) FeedbackRepository {
	return &mongoFeedbackRepository{collection: collection}
}

func (r *mongoFeedbackRepository) Create(ctx context.Context, record *models.Feedback) error {
	result, err := r.collection.InsertOne(ctx, newFeedbackDocument(*record))
	if err != nil {
		return err
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	record.ID = id.Hex()
	return nil
}

func (r *mongoFeedbackRepository) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []feedbackDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]models.Feedback, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.model())
	}
	return items, nil
}

// EnsureFeedbackIndexes creates the index backing newest-first listing.
func EnsureFeedbackIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	return err
}

// EnsureFeedbackIndexesWhenReady waits for ready to close, then creates the feedback indexes.
// It returns ctx.Err() when ctx ends first.
func EnsureFeedbackIndexesWhenReady(ctx context.Context, ready <-chan struct{}, collection *mongo.Collection) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ready:
	}
	return EnsureFeedbackIndexes(ctx, collection)
}
