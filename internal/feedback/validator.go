package feedback

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/feedback-go-api/internal/models"
)

// whitespace is the character class browsers use for \s, wider than RE2's ASCII-only \s.
const whitespace = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z` + whitespace + `]+$`)
	emailPattern = regexp.MustCompile(`^[^@` + whitespace + `]+@[^@` + whitespace + `]+\.[^@` + whitespace + `]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// FieldErrors maps a form field name to a human readable message. An empty map means valid.
type FieldErrors map[string]string

// ValidationError reports every field of a submission that failed its rule.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "feedback validation failed: " + strings.Join(parts, "; ")
}

// rules is the shape the validator checks. Free text fields are trimmed before they land
// here; useful and rating are checked as submitted.
type rules struct {
	FullName string `json:"fullName" validate:"required,alphaspace"`
	Email    string `json:"email" validate:"required,simpleemail"`
	Phone    string `json:"phone" validate:"required,digits10"`
	RollNo   string `json:"rollNo" validate:"required"`
	Branch   string `json:"branch" validate:"required"`
	Useful   string `json:"useful" validate:"required,useful"`
	Rating   string `json:"rating" validate:"required,rating"`
}

var messages = map[string]map[string]string{
	"fullName": {
		"required":   "Full Name is required",
		"alphaspace": "Full Name must contain only alphabets and spaces",
	},
	"email": {
		"required":    "Email is required",
		"simpleemail": "Please enter a valid email address",
	},
	"phone": {
		"required": "Contact Number is required",
		"digits10": "Contact Number must be exactly 10 digits",
	},
	"rollNo": {
		"required": "Roll Number is required",
	},
	"branch": {
		"required": "Branch is required",
	},
	"useful": {
		"required": "Please select if the course was useful",
		"useful":   "Please select if the course was useful",
	},
	"rating": {
		"required": "Rating is required",
		"rating":   "Rating must be between 1 and 5",
	},
}

// Validator checks feedback submissions. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs a validator with the feedback rule tags registered.
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(validate, "alphaspace", namePattern)
	mustRegister(validate, "simpleemail", emailPattern)
	mustRegister(validate, "digits10", phonePattern)
	mustRegisterFunc(validate, "useful", isUseful)
	mustRegisterFunc(validate, "rating", isRating)

	return &Validator{validate: validate}
}

func mustRegister(validate *validator.Validate, tag string, pattern *regexp.Regexp) {
	mustRegisterFunc(validate, tag, pattern.MatchString)
}

func mustRegisterFunc(validate *validator.Validate, tag string, check func(string) bool) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return check(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func isUseful(value string) bool {
	return value == models.FeedbackUsefulYes || value == models.FeedbackUsefulNo
}

// isRating accepts only the canonical decimal form, so " 4", "04" and "+4" fail.
func isRating(value string) bool {
	n, err := strconv.Atoi(value)
	if err != nil || strconv.Itoa(n) != value {
		return false
	}
	return n >= models.FeedbackRatingMin && n <= models.FeedbackRatingMax
}

// Validate checks every field of the submission and returns the failures keyed by field.
func (v *Validator) Validate(sub Submission) FieldErrors {
	input := rules{
		FullName: strings.TrimSpace(sub.FullName),
		Email:    strings.TrimSpace(sub.Email),
		Phone:    strings.TrimSpace(sub.Phone),
		RollNo:   strings.TrimSpace(sub.RollNo),
		Branch:   strings.TrimSpace(sub.Branch),
		Useful:   sub.Useful,
		Rating:   sub.Rating,
	}

	errs := FieldErrors{}
	err := v.validate.Struct(input)
	if err == nil {
		return errs
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["general"] = "Submission could not be validated"
		return errs
	}

	for _, fieldErr := range validationErrors {
		errs[fieldErr.Field()] = messageFor(fieldErr.Field(), fieldErr.Tag())
	}
	return errs
}

func messageFor(field, tag string) string {
	if byTag, ok := messages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the shared validator instance.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = NewValidator()
	})
	return defaultValidator
}

// Validate checks a submission with the shared validator.
func Validate(sub Submission) FieldErrors {
	return Default().Validate(sub)
}
