package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/feedback-go-api/internal/config"
	"github.com/noah-isme/feedback-go-api/internal/dto"
	"github.com/noah-isme/feedback-go-api/internal/feedback"
	"github.com/noah-isme/feedback-go-api/internal/handler"
	"github.com/noah-isme/feedback-go-api/internal/service"
)

type mockFeedbackService struct {
	lastPayload dto.FeedbackRequest
	lastLimit   int
	response    dto.FeedbackSubmitResponse
	items       []dto.FeedbackResponse
	connected   bool
	err         error
}

func (m *mockFeedbackService) Submit(_ context.Context, req dto.FeedbackRequest) (dto.FeedbackSubmitResponse, error) {
	m.lastPayload = req
	if m.err != nil {
		return dto.FeedbackSubmitResponse{}, m.err
	}
	if _, err := feedback.Parse(req.Submission()); err != nil {
		return dto.FeedbackSubmitResponse{}, err
	}
	return m.response, nil
}

func (m *mockFeedbackService) ListAll(_ context.Context, limit int) ([]dto.FeedbackResponse, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockFeedbackService) Health(context.Context) dto.HealthStatus {
	if m.connected {
		return dto.HealthStatus{Status: dto.ServerRunning, Database: dto.DatabaseConnected}
	}
	return dto.HealthStatus{Status: dto.ServerRunning, Database: dto.DatabaseDisconnected}
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

func newFeedbackApp(svc service.FeedbackService, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	h := handler.NewFeedbackHandler(svc, 50, zerolog.New(io.Discard))
	h.Register(app.Group("/api/v1/feedback"), guards...)
	app.Post("/submit", h.Submit)
	return app
}

func validForm() map[string]interface{} {
	return map[string]interface{}{
		"fullName":    "Jane Doe",
		"email":       "JANE@X.COM",
		"phone":       "9876543210",
		"rollNo":      "R1",
		"branch":      "CSE",
		"useful":      "yes",
		"rating":      4,
		"suggestions": "",
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestFeedbackHandler_SubmitCreated(t *testing.T) {
	createdAt := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	svc := &mockFeedbackService{response: dto.FeedbackSubmitResponse{ID: "fb-1", CreatedAt: createdAt}}
	app := newFeedbackApp(svc)

	resp := postJSON(t, app, "/api/v1/feedback", validForm())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "Feedback submitted successfully!", body.Message)

	var data dto.FeedbackSubmitResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Equal(t, "fb-1", data.ID)
	require.True(t, createdAt.Equal(data.CreatedAt))

	require.Equal(t, dto.FormValue("4"), svc.lastPayload.Rating)
}

func TestFeedbackHandler_LegacySubmitAcceptsForm(t *testing.T) {
	svc := &mockFeedbackService{response: dto.FeedbackSubmitResponse{ID: "fb-2"}}
	app := newFeedbackApp(svc)

	form := url.Values{}
	for key, value := range validForm() {
		if s, ok := value.(string); ok {
			form.Set(key, s)
		}
	}
	form.Set("rating", "5")

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, dto.FormValue("Jane Doe"), svc.lastPayload.FullName)
	require.Equal(t, dto.FormValue("5"), svc.lastPayload.Rating)
}

func TestFeedbackHandler_ValidationFailureEchoesInput(t *testing.T) {
	svc := &mockFeedbackService{}
	app := newFeedbackApp(svc)

	form := validForm()
	form["phone"] = "12345"
	form["rating"] = "6"

	resp := postJSON(t, app, "/submit", form)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "validation failed", body.Message)
	require.Equal(t, "Contact Number must be exactly 10 digits", body.Errors["phone"])
	require.Equal(t, "Rating must be between 1 and 5", body.Errors["rating"])
	require.NotContains(t, body.Errors, "fullName")

	var echoed map[string]string
	require.NoError(t, json.Unmarshal(body.Data, &echoed))
	require.Equal(t, "12345", echoed["phone"])
	require.Equal(t, "JANE@X.COM", echoed["email"])
}

func TestFeedbackHandler_StoreUnavailable(t *testing.T) {
	svc := &mockFeedbackService{err: service.ErrStoreUnavailable}
	app := newFeedbackApp(svc)

	resp := postJSON(t, app, "/api/v1/feedback", validForm())
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "Database is not connected", body.Errors["general"])
}

func TestFeedbackHandler_StoreWriteError(t *testing.T) {
	svc := &mockFeedbackService{err: &service.StoreWriteError{Err: errors.New("E11000 duplicate key")}}
	app := newFeedbackApp(svc)

	resp := postJSON(t, app, "/api/v1/feedback", validForm())
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.Equal(t, "database error", body.Message)
	require.Equal(t, "Database error occurred: E11000 duplicate key", body.Errors["general"])
}

func TestFeedbackHandler_DuplicateSubmission(t *testing.T) {
	svc := &mockFeedbackService{err: service.ErrDuplicateSubmission}
	app := newFeedbackApp(svc)

	resp := postJSON(t, app, "/api/v1/feedback", validForm())
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestFeedbackHandler_RejectsNestedValues(t *testing.T) {
	svc := &mockFeedbackService{}
	app := newFeedbackApp(svc)

	form := validForm()
	form["fullName"] = map[string]string{"first": "Jane"}

	resp := postJSON(t, app, "/api/v1/feedback", form)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "invalid payload", body.Message)
	require.NotEmpty(t, body.Details)
}

func TestFeedbackHandler_ListCapsLimit(t *testing.T) {
	svc := &mockFeedbackService{items: []dto.FeedbackResponse{{ID: "b"}, {ID: "a"}}}
	app := newFeedbackApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feedback?limit=500", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 50, svc.lastLimit)

	var body struct {
		Data []dto.FeedbackResponse `json:"data"`
		Meta map[string]int         `json:"meta"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 2)
	require.Equal(t, "b", body.Data[0].ID)
	require.Equal(t, 2, body.Meta["count"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feedback?limit=ten", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFeedbackHandler_ListEscapesMarkup(t *testing.T) {
	svc := &mockFeedbackService{items: []dto.FeedbackResponse{{ID: "a", Suggestions: "<script>alert(1)</script> x<y"}}}
	app := newFeedbackApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feedback", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "<script>")
	require.Contains(t, string(raw), `\u003cscript\u003e`)

	var body struct {
		Data []dto.FeedbackResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, "<script>alert(1)</script> x<y", body.Data[0].Suggestions)
}

func TestFeedbackHandler_ListRunsGuards(t *testing.T) {
	svc := &mockFeedbackService{}
	deny := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusUnauthorized) }
	app := newFeedbackApp(svc, deny)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/feedback", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, app, "/api/v1/feedback", validForm())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestHealthCheckReportsDatabase(t *testing.T) {
	cfg := config.Config{AppName: "student-feedback", AppEnv: "test"}
	for _, tc := range []struct {
		connected bool
		want      string
	}{
		{connected: true, want: "Connected"},
		{connected: false, want: "Disconnected"},
	} {
		app := fiber.New()
		app.Get("/health", handler.HealthCheck(cfg, &mockFeedbackService{connected: tc.connected}))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body handler.HealthResponse
		decodeResponse(t, resp, &body)
		require.Equal(t, "Server running", body.Status)
		require.Equal(t, tc.want, body.Database)
		require.Equal(t, "student-feedback", body.Service)
		require.False(t, body.Timestamp.IsZero())
	}
}
