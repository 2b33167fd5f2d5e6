// Package model contains domain models passed between layers.
//
// Every record is a declared shape; the json tags double as the document
// field names used by the store and by the HTTP API.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a performance or a feed post.
type Status string

// Lifecycle states. Records are never removed physically; a soft delete
// flips the status to inactive.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPrevious Status = "previous"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPrevious:
		return true
	}
	return false
}

// ParseStatus parses a status, defaulting the empty string to active.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusActive, nil
	}
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Performance is the primary record of the portal's performance listing.
// Band, SetList and VenueID reference other collections by business key;
// nothing enforces that the referenced entities exist.
type Performance struct {
	PerformanceID string    `json:"performanceID" validate:"required"`
	OwnerID       string    `json:"ownerID" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	EventType     string    `json:"eventType"`
	Date          string    `json:"date"`
	Band          string    `json:"band"`
	SetList       string    `json:"setList"`
	VenueID       string    `json:"venueId"`
	Status        Status    `json:"status" validate:"required,oneof=active inactive previous"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PerformanceView is a performance joined with the display attributes of
// its band, setlist and venue. It exists only for rendering.
type PerformanceView struct {
	Performance

	BandName      string `json:"bandName"`
	SetListName   string `json:"setListName"`
	VenueName     string `json:"venueName"`
	City          string `json:"city"`
	State         string `json:"state"`
	StreetAddress string `json:"streetAddress"`
	Zip           string `json:"zip"`
}
