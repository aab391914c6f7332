// Package feedback validates and normalises student feedback submissions.
//
// Validated is the only way to obtain a record that can be persisted: its fields are
// unexported and Parse is its sole constructor.
package feedback

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/feedback-go-api/internal/models"
)

// Submission is the raw form as sent by a client. Every value is text, rating included.
type Submission struct {
	FullName    string
	Email       string
	Phone       string
	RollNo      string
	Branch      string
	Useful      string
	Rating      string
	Suggestions string
}

// Fields returns the submission keyed by form field name.
func (s Submission) Fields() map[string]string {
	return map[string]string{
		"fullName":    s.FullName,
		"email":       s.Email,
		"phone":       s.Phone,
		"rollNo":      s.RollNo,
		"branch":      s.Branch,
		"useful":      s.Useful,
		"rating":      s.Rating,
		"suggestions": s.Suggestions,
	}
}

// Validated is a normalised submission that passed every rule.
type Validated struct {
	fullName    string
	email       string
	phone       string
	rollNo      string
	branch      string
	useful      string
	rating      int
	suggestions string
}

// Parse validates the submission and, when no field fails, returns its normalised form.
// The returned error is a *ValidationError listing every failing field.
func Parse(sub Submission) (Validated, error) {
	return Default().Parse(sub)
}

// Parse validates the submission with v and normalises it.
func (v *Validator) Parse(sub Submission) (Validated, error) {
	if errs := v.Validate(sub); len(errs) > 0 {
		return Validated{}, &ValidationError{Fields: errs}
	}

	// the rating rule only admits a single digit 1-5
	rating, _ := strconv.Atoi(sub.Rating)

	return Validated{
		fullName:    strings.TrimSpace(sub.FullName),
		email:       strings.ToLower(strings.TrimSpace(sub.Email)),
		phone:       strings.TrimSpace(sub.Phone),
		rollNo:      strings.TrimSpace(sub.RollNo),
		branch:      strings.TrimSpace(sub.Branch),
		useful:      sub.Useful,
		rating:      rating,
		suggestions: strings.TrimSpace(sub.Suggestions),
	}, nil
}

func (v Validated) FullName() string    { return v.fullName }
func (v Validated) Email() string       { return v.email }
func (v Validated) Phone() string       { return v.phone }
func (v Validated) RollNo() string      { return v.rollNo }
func (v Validated) Branch() string      { return v.branch }
func (v Validated) Useful() string      { return v.useful }
func (v Validated) Rating() int         { return v.rating }
func (v Validated) Suggestions() string { return v.suggestions }

// Record builds the persistable form stamped with createdAt. The identifier is left for
// the store to assign.
func (v Validated) Record(createdAt time.Time) models.Feedback {
	return models.Feedback{
		FullName:    v.fullName,
		Email:       v.email,
		Phone:       v.phone,
		RollNo:      v.rollNo,
		Branch:      v.branch,
		Useful:      v.useful,
		Rating:      v.rating,
		Suggestions: v.suggestions,
		CreatedAt:   createdAt,
	}
}
