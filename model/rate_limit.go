package model

import "time"

// RateLimitEntry is one fixed window for one key. It lives in memory only.
type RateLimitEntry struct {
	Count     int       `json:"count"`
	ResetTime time.Time `json:"resetTime"`
}

func (e RateLimitEntry) Expired(now time.Time) bool {
	return now.After(e.ResetTime)
}

type RateLimitPolicy struct {
	Name        string        `json:"name"`
	MaxRequests int           `json:"maxRequests"`
	Window      time.Duration `json:"window"`
	Description string        `json:"description"`
}
