package model

import "time"

// Event is one community-participation record. Score and token amount are
// derived from the metrics once at creation time and never recomputed.
type Event struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	EventName             string    `json:"event_name"`
	Metric1               float64   `json:"metric_1"`
	Metric2               float64   `json:"metric_2"`
	CalculatedScore       float64   `json:"calculated_score"`
	CalculatedTokenAmount float64   `json:"calculated_token_amount"`
	IsRedeemed            bool      `json:"is_redeemed"`
	CreatedAt             time.Time `json:"created_at"`
}
