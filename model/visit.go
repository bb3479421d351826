package model

import "time"

type Location struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

type VisitRecord struct {
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent"`
	Location  *Location `json:"location,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}
