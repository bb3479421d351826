package dto

import (
	"math"
	"time"
)

type RateLimitInfo struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetTime time.Time `json:"resetTime"`
}

// RetryAfter is the whole number of seconds until the window rolls over, never below one.
func (i RateLimitInfo) RetryAfter(now time.Time) int {
	seconds := int(math.Ceil(i.ResetTime.Sub(now).Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

type RateLimitExceededResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}
