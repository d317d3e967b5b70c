package model

import "time"

// Conclusion types.
const (
	ConclusionTypeJAF   = "jaf"
	ConclusionTypePenal = "penal"
)

// Conclusion statuses.
const (
	StatusDraft      = "draft"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Conclusion is a legal draft owned by one user. It is the parent of its pieces.
type Conclusion struct {
	ID             string         `json:"conclusion_id"`
	UserID         string         `json:"user_id"`
	Type           string         `json:"type"`
	Parties        map[string]any `json:"parties"`
	Faits          string         `json:"faits"`
	Demandes       string         `json:"demandes"`
	ConclusionText string         `json:"conclusion_text"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ConclusionUpdate carries the optional fields of a partial conclusion update.
type ConclusionUpdate struct {
	ConclusionText *string `json:"conclusion_text,omitempty"`
	Status         *string `json:"status,omitempty"`
}
