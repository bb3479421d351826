package model

import "time"

// FailedLoginAttempt keeps the attempted secret verbatim, the admin view shows it.
type FailedLoginAttempt struct {
	IP                string    `json:"ip"`
	Timestamp         time.Time `json:"timestamp"`
	UserAgent         string    `json:"userAgent"`
	AttemptedPassword string    `json:"attemptedPassword"`
	Location          *Location `json:"location,omitempty"`
}
