package models

import "time"

// RequestRun is the journal record for one processed webhook request.
// The URL is stored only as its fingerprint so the journal never leaks
// raw listing URLs.
type RequestRun struct {
	ID             string
	URLFingerprint string
	Source         string
	Status         string
	LandM2         *int
	PriceEUR       *int
	AreaM2         *int
	Error          string
	StartedAt      time.Time
	FinishedAt     *time.Time
	DurationMS     int64
}

// NotifiedListing is the archive record for a listing that passed every
// gate and was delivered.
type NotifiedListing struct {
	Fingerprint string
	URL         string
	Source      string
	LandM2      *int
	PriceEUR    *int
	AreaM2      *int
	Message     string
	NotifiedAt  time.Time
}
