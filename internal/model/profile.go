package model

import "time"

// Profile carries per-user aggregates and the admin flag that gates the
// redemption endpoints.
type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	TotalEarnings float64   `json:"total_earnings"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
}
