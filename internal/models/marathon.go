package models

import (
	"time"

	"github.com/google/uuid"
)

// Marathon represents a marathon event open for registration.
type Marathon struct {
	ID                     uuid.UUID `json:"id"`
	Title                  string    `json:"title"`
	Image                  string    `json:"image"`
	Location               string    `json:"location"`
	Distance               string    `json:"distance"`
	Description            string    `json:"description"`
	RegistrationStart      time.Time `json:"registration_start"`
	RegistrationEnd        time.Time `json:"registration_end"`
	MarathonStart          time.Time `json:"marathon_start"`
	CreatorEmail           string    `json:"creator_email"`
	CreatorName            string    `json:"creator_name"`
	TotalRegistrationCount int       `json:"total_registration_count"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// MarathonUpdate is the editable field set for a full-field replace.
// The counter and creator identity are never part of an update.
type MarathonUpdate struct {
	Title             string
	Image             string
	Location          string
	Distance          string
	Description       string
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	MarathonStart     time.Time
}
