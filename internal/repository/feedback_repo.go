package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/feedback-go-api/internal/models"
)

// FeedbackRepository persists feedback records. Records are never updated once created.
type FeedbackRepository interface {
	// Create inserts record and sets record.ID to the identifier assigned by the store.
	Create(ctx context.Context, record *models.Feedback) error
	// ListRecent returns records newest first. A non-positive limit returns all of them.
	ListRecent(ctx context.Context, limit int) ([]models.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository constructs a repository backed by GORM.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, record *models.Feedback) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		record.ID = ""
		return err
	}
	return nil
}

func (r *feedbackRepository) ListRecent(ctx context.Context, limit int) ([]models.Feedback, error) {
	query := r.db.WithContext(ctx).Model(&models.Feedback{}).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []models.Feedback
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
