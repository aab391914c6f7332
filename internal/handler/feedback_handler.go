package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/feedback-go-api/internal/dto"
	"github.com/noah-isme/feedback-go-api/internal/feedback"
	"github.com/noah-isme/feedback-go-api/internal/service"
	"github.com/noah-isme/feedback-go-api/internal/utils"
)

const (
	msgSubmitted         = "Feedback submitted successfully!"
	msgValidationFailed  = "validation failed"
	msgStoreUnavailable  = "database unavailable"
	msgStoreError        = "database error"
	msgStoreDisconnected = "Database is not connected"
)

// FeedbackHandler serves the feedback form endpoints.
type FeedbackHandler struct {
	service   service.FeedbackService
	listLimit int
	logger    zerolog.Logger
}

// NewFeedbackHandler constructs a feedback handler. listLimit caps the number of records a
// single listing returns; zero leaves listings uncapped.
func NewFeedbackHandler(service service.FeedbackService, listLimit int, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service:   service,
		listLimit: listLimit,
		logger:    logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register wires feedback routes. Listing handlers run behind guards, submission is public.
func (h *FeedbackHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	router.Post("", h.Submit)

	list := append(append([]fiber.Handler{}, guards...), h.List)
	router.Get("", list...)
}

// Submit validates and stores one form submission.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", err.Error())
	}

	logger := requestLogger(h.logger, c)

	response, err := h.service.Submit(c.UserContext(), payload)
	if err != nil {
		var validationErr *feedback.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return utils.SendFieldErrors(c, fiber.StatusUnprocessableEntity, msgValidationFailed, validationErr.Fields, payload.Submission().Fields())
		case errors.Is(err, service.ErrStoreUnavailable):
			logger.Warn().Msg("submission rejected, store disconnected")
			return utils.SendFieldErrors(c, fiber.StatusServiceUnavailable, msgStoreUnavailable, map[string]string{"general": msgStoreDisconnected}, nil)
		case errors.Is(err, service.ErrDuplicateSubmission):
			return utils.SendError(c, fiber.StatusTooManyRequests, "duplicate submission")
		default:
			var writeErr *service.StoreWriteError
			cause := err
			if errors.As(err, &writeErr) {
				cause = writeErr.Err
			}
			logger.Error().Err(err).Msg("failed to store feedback")
			return utils.SendFieldErrors(c, fiber.StatusInternalServerError, msgStoreError, map[string]string{"general": "Database error occurred: " + cause.Error()}, nil)
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, msgSubmitted, response)
}

// List returns stored feedback, newest first.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if h.listLimit > 0 && (limit == 0 || limit > h.listLimit) {
		limit = h.listLimit
	}

	items, err := h.service.ListAll(c.UserContext(), limit)
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			return utils.SendFieldErrors(c, fiber.StatusServiceUnavailable, msgStoreUnavailable, map[string]string{"general": msgStoreDisconnected}, nil)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list feedback")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load feedback")
	}

	return utils.OK(c, items, "feedback retrieved", fiber.Map{"count": len(items)})
}
