// Package domain contains the core data types for the packing list service.
// It is imported by every other internal package (repo, service, handler)
// and holds no I/O.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Trip is the top-level aggregate: one destination, one date range, and the
// packing list (items and bags) hanging off it.
//
// Activities are plain names. They may match a predefined activity, a custom
// activity, or nothing at all once a custom activity has been deleted.
type Trip struct {
	ID          uuid.UUID
	Owner       string
	Destination string
	Latitude    float64
	Longitude   float64
	StartDate   time.Time
	EndDate     time.Time
	Activities  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasCoordinates reports whether a location has been chosen. (0, 0) is the
// "not yet set" marker.
func (t Trip) HasCoordinates() bool {
	return t.Latitude != 0 || t.Longitude != 0
}

// HasDates reports whether both ends of the date range are set.
func (t Trip) HasDates() bool {
	return !t.StartDate.IsZero() && !t.EndDate.IsZero()
}

// LocationOrDatesChanged reports whether next moves the trip in space or time
// relative to t, which invalidates any cached weather.
func (t Trip) LocationOrDatesChanged(next Trip) bool {
	return t.Latitude != next.Latitude ||
		t.Longitude != next.Longitude ||
		!t.StartDate.Equal(next.StartDate) ||
		!t.EndDate.Equal(next.EndDate)
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrValidation, s)
	}
	return t, nil
}

// Validate checks the invariants every stored trip satisfies.
func (t Trip) Validate() error {
	if strings.TrimSpace(t.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if t.Latitude < -90 || t.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if t.Longitude < -180 || t.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	if !t.HasDates() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	return nil
}

// CleanActivities trims names and drops blanks and repeats, keeping order.
func CleanActivities(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
