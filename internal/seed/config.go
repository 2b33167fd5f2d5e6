// Package seed loads fixture data into a running portal and verifies the
// enriched performance listing that comes back.
package seed

import "time"

// Config holds configuration for a seed run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Email        string        // Account the fixtures are created under
	DisplayName  string        // Display name used when registering
	AccessCode   string        // Early-access code, if registration is gated
	FixturesFile string        // Optional YAML fixtures; empty uses the built-in set
	Performances int           // Extra generated performances on top of the fixtures
	OrphanRate   float64       // Share of generated references that point nowhere
	Workers      int           // Concurrent create requests
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Generator seed
}

// Stats holds seed run statistics.
type Stats struct {
	Venues       int
	Bands        int
	Setlists     int
	Performances int
	Failed       int
	Listed       int
	Orphans      int
	StartTime    time.Time
	Duration     time.Duration
}
