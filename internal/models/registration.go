package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration is a runner's registration for a marathon.
// (Email, MarathonID) is unique: one registration per runner per marathon.
// MarathonTitle and MarathonStart are denormalized from the marathon so
// listings render without a join.
type Registration struct {
	ID             uuid.UUID `json:"id"`
	MarathonID     uuid.UUID `json:"marathon_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ContactNo      string    `json:"contact_no"`
	AdditionalInfo string    `json:"additional_info"`
	MarathonTitle  string    `json:"marathon_title"`
	MarathonStart  time.Time `json:"marathon_start"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RegistrationUpdate is the editable field set for a registration update.
// The (email, marathon_id) uniqueness key is immutable.
type RegistrationUpdate struct {
	FirstName      string
	LastName       string
	ContactNo      string
	AdditionalInfo string
}
