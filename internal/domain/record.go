package domain

import (
	"fmt"
	"time"
)

var (
	// ErrOrganizationMissing is returned when a record is logged without an organization name.
	ErrOrganizationMissing = fmt.Errorf("%w: organization is required", ErrValidation)
	// ErrHoursNotPositive is returned when the hours value is zero, negative or not finite.
	ErrHoursNotPositive = fmt.Errorf("%w: hours must be greater than zero", ErrValidation)
	// ErrInvalidHours is returned when the hours field does not parse as a number.
	ErrInvalidHours = fmt.Errorf("%w: hours is not a number", ErrParse)
	// ErrInvalidDate is returned when the date field does not parse as YYYY-MM-DD.
	ErrInvalidDate = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrParse)
)

// DateFormat is the textual calendar-date format used on the wire and in storage.
const DateFormat = "2006-01-02"

// VolunteerRecord represents a single logged volunteer activity owned by one user.
type VolunteerRecord struct {
	ID           int64     // Unique identifier
	UserID       int64     // Owning user reference
	Organization string    // Organization the hours were volunteered for
	Hours        float64   // Number of hours, always > 0
	Date         time.Time // Activity date, no time-of-day component
	Description  string    // Optional free-text description
	CreatedAt    int64     // Unix timestamp of insertion
}

// DateString returns the activity date in the canonical YYYY-MM-DD format.
func (r VolunteerRecord) DateString() string {
	return r.Date.Format(DateFormat)
}
