package model

import "time"

// Document is one whole JSON document when the store runs on a SQL backend.
type Document struct {
	Name      string    `json:"name" gorm:"primaryKey;size:64;not null"`
	Body      []byte    `json:"body" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}
