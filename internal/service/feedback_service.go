package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/feedback-go-api/internal/dto"
	"github.com/noah-isme/feedback-go-api/internal/feedback"
	"github.com/noah-isme/feedback-go-api/internal/models"
	"github.com/noah-isme/feedback-go-api/internal/observability"
	"github.com/noah-isme/feedback-go-api/internal/repository"
)

var (
	// ErrStoreUnavailable indicates the store was known to be unreachable, so no write was attempted.
	ErrStoreUnavailable = errors.New("feedback store unavailable")
	// ErrStoreWrite matches every *StoreWriteError.
	ErrStoreWrite = errors.New("feedback store write failed")
	// ErrDuplicateSubmission indicates an identical submission was accepted recently.
	ErrDuplicateSubmission = errors.New("duplicate feedback submission")
)

// StoreWriteError wraps a failure raised by the store while inserting a record.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

func (e *StoreWriteError) Is(target error) bool { return target == ErrStoreWrite }

// HealthReporter reports whether the feedback store is reachable.
type HealthReporter interface {
	Connected() bool
}

// FeedbackPublisher announces accepted feedback to downstream consumers.
type FeedbackPublisher interface {
	Publish(ctx context.Context, record models.Feedback) error
}

// FeedbackService exposes the feedback submission workflow.
type FeedbackService interface {
	Submit(ctx context.Context, req dto.FeedbackRequest) (dto.FeedbackSubmitResponse, error)
	ListAll(ctx context.Context, limit int) ([]dto.FeedbackResponse, error)
	Health(ctx context.Context) dto.HealthStatus
}

type feedbackService struct {
	repo      repository.FeedbackRepository
	health    HealthReporter
	cache     *redis.Client
	dedupeTTL time.Duration
	publisher FeedbackPublisher
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewFeedbackService constructs the feedback service. cache and publisher are optional; the
// duplicate guard only runs when cache is set and dedupeTTL is positive.
func NewFeedbackService(repo repository.FeedbackRepository, health HealthReporter, cache *redis.Client, dedupeTTL time.Duration, publisher FeedbackPublisher, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		repo:      repo,
		health:    health,
		cache:     cache,
		dedupeTTL: dedupeTTL,
		publisher: publisher,
		logger:    logger.With().Str("component", "feedback_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/feedback-go-api/internal/service/feedback"),
		now:       time.Now,
	}
}

func (s *feedbackService) Submit(ctx context.Context, req dto.FeedbackRequest) (dto.FeedbackSubmitResponse, error) {
	ctx, span := s.tracer.Start(ctx, "feedback.submit")
	defer span.End()

	validated, err := feedback.Parse(req.Submission())
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		observability.FeedbackSubmissions().WithLabelValues("invalid").Inc()
		return dto.FeedbackSubmitResponse{}, err
	}

	if !s.health.Connected() {
		span.SetStatus(codes.Error, "store unavailable")
		observability.FeedbackSubmissions().WithLabelValues("unavailable").Inc()
		return dto.FeedbackSubmitResponse{}, ErrStoreUnavailable
	}

	dedupeKey, err := s.claim(ctx, validated)
	if err != nil {
		span.SetStatus(codes.Error, "duplicate submission")
		observability.FeedbackSubmissions().WithLabelValues("duplicate").Inc()
		return dto.FeedbackSubmitResponse{}, err
	}

	record := validated.Record(s.now().UTC().Truncate(time.Millisecond))

	start := time.Now()
	err = s.repo.Create(ctx, &record)
	observability.StoreWriteLatency().Observe(time.Since(start).Seconds())
	if err != nil {
		s.release(ctx, dedupeKey)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.FeedbackSubmissions().WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("email", maskEmail(record.Email)).Msg("feedback insert failed")
		return dto.FeedbackSubmitResponse{}, &StoreWriteError{Err: err}
	}

	span.SetAttributes(attribute.String("feedback.id", record.ID))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, record); err != nil {
			span.RecordError(err)
			s.logger.Warn().Err(err).Str("feedback_id", record.ID).Msg("feedback event publish failed")
		}
	}

	observability.FeedbackSubmissions().WithLabelValues("accepted").Inc()
	s.logger.Info().
		Str("feedback_id", record.ID).
		Str("email", maskEmail(record.Email)).
		Int("rating", record.Rating).
		Msg("feedback saved")
	span.SetStatus(codes.Ok, "saved")

	return dto.FeedbackSubmitResponse{ID: record.ID, CreatedAt: record.CreatedAt}, nil
}

func (s *feedbackService) ListAll(ctx context.Context, limit int) ([]dto.FeedbackResponse, error) {
	ctx, span := s.tracer.Start(ctx, "feedback.list")
	defer span.End()

	if !s.health.Connected() {
		span.SetStatus(codes.Error, "store unavailable")
		return nil, ErrStoreUnavailable
	}

	items, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	span.SetAttributes(attribute.Int("feedback.count", len(items)))
	return dto.NewFeedbackResponseSlice(items), nil
}

func (s *feedbackService) Health(ctx context.Context) dto.HealthStatus {
	database := dto.DatabaseDisconnected
	if s.health.Connected() {
		database = dto.DatabaseConnected
	}
	return dto.HealthStatus{Status: dto.ServerRunning, Database: database}
}

// claim reserves the submission checksum in redis. It returns the reserved key, or "" when
// the guard is disabled or redis could not be reached.
func (s *feedbackService) claim(ctx context.Context, validated feedback.Validated) (string, error) {
	if s.cache == nil || s.dedupeTTL <= 0 {
		return "", nil
	}

	checksum := computeChecksum(
		validated.Email(),
		validated.RollNo(),
		validated.Branch(),
		validated.Useful(),
		strconv.Itoa(validated.Rating()),
		validated.Suggestions(),
	)
	key := fmt.Sprintf("feedback:dedupe:%s", checksum)

	ok, err := s.cache.SetNX(ctx, key, 1, s.dedupeTTL).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("duplicate guard unavailable")
		return "", nil
	}
	if !ok {
		return "", ErrDuplicateSubmission
	}
	return key, nil
}

func (s *feedbackService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to release duplicate guard")
	}
}
