package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/feedback-go-api/internal/feedback"
	"github.com/noah-isme/feedback-go-api/internal/models"
)

// FormValue is a form field read as text. JSON clients may send numbers or booleans,
// which are kept as their literal text; null reads as empty.
type FormValue string

// UnmarshalJSON accepts JSON strings, numbers, booleans and null.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	case '{', '[':
		return fmt.Errorf("form value must be a scalar")
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err == nil {
			*v = FormValue(n.String())
			return nil
		}
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("form value must be a scalar")
		}
		*v = FormValue(fmt.Sprintf("%t", b))
		return nil
	}
}

// FeedbackRequest is the payload accepted by the submit endpoints. Identifier and
// timestamp fields are deliberately absent so clients cannot set them.
type FeedbackRequest struct {
	FullName    FormValue `json:"fullName" form:"fullName"`
	Email       FormValue `json:"email" form:"email"`
	Phone       FormValue `json:"phone" form:"phone"`
	RollNo      FormValue `json:"rollNo" form:"rollNo"`
	Branch      FormValue `json:"branch" form:"branch"`
	Useful      FormValue `json:"useful" form:"useful"`
	Rating      FormValue `json:"rating" form:"rating"`
	Suggestions FormValue `json:"suggestions" form:"suggestions"`
}

// Submission converts the request into the raw submission checked by the validator.
func (r FeedbackRequest) Submission() feedback.Submission {
	return feedback.Submission{
		FullName:    string(r.FullName),
		Email:       string(r.Email),
		Phone:       string(r.Phone),
		RollNo:      string(r.RollNo),
		Branch:      string(r.Branch),
		Useful:      string(r.Useful),
		Rating:      string(r.Rating),
		Suggestions: string(r.Suggestions),
	}
}

// FeedbackSubmitResponse confirms an accepted submission.
type FeedbackSubmitResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackResponse is the serialized representation of a stored feedback record.
type FeedbackResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	RollNo      string    `json:"rollNo"`
	Branch      string    `json:"branch"`
	Useful      string    `json:"useful"`
	Rating      int       `json:"rating"`
	Suggestions string    `json:"suggestions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewFeedbackResponse converts a model into a DTO.
func NewFeedbackResponse(model models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          model.ID,
		FullName:    model.FullName,
		Email:       model.Email,
		Phone:       model.Phone,
		RollNo:      model.RollNo,
		Branch:      model.Branch,
		Useful:      model.Useful,
		Rating:      model.Rating,
		Suggestions: model.Suggestions,
		CreatedAt:   model.CreatedAt,
	}
}

// NewFeedbackResponseSlice converts a slice of models into DTOs.
func NewFeedbackResponseSlice(items []models.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewFeedbackResponse(item))
	}
	return out
}

const (
	// ServerRunning is the status reported while the process serves requests.
	ServerRunning = "Server running"
	// DatabaseConnected and DatabaseDisconnected describe the store liveness.
	DatabaseConnected    = "Connected"
	DatabaseDisconnected = "Disconnected"
)

// HealthStatus reports process and store liveness.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
