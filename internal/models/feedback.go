package models

import "time"

// Feedback is a persisted student feedback form. Records are create-only.
type Feedback struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	FullName    string    `gorm:"size:128;not null" json:"fullName"`
	Email       string    `gorm:"size:160;not null;index" json:"email"`
	Phone       string    `gorm:"size:16;not null" json:"phone"`
	RollNo      string    `gorm:"size:64;not null" json:"rollNo"`
	Branch      string    `gorm:"size:64;not null" json:"branch"`
	Useful      string    `gorm:"size:8;not null" json:"useful"`
	Rating      int       `gorm:"not null" json:"rating"`
	Suggestions string    `gorm:"type:text" json:"suggestions"`
	CreatedAt   time.Time `gorm:"not null;index" json:"createdAt"`
}

const (
	// FeedbackUsefulYes marks a course reported as useful.
	FeedbackUsefulYes = "yes"
	// FeedbackUsefulNo marks a course reported as not useful.
	FeedbackUsefulNo = "no"

	// FeedbackRatingMin is the lowest accepted rating.
	FeedbackRatingMin = 1
	// FeedbackRatingMax is the highest accepted rating.
	FeedbackRatingMax = 5
)
