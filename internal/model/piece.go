package model

import "time"

// Piece is one exhibit file attached to a conclusion.
// Numero is its 1-based position among the conclusion's exhibits.
type Piece struct {
	ID               string    `json:"piece_id"`
	ConclusionID     string    `json:"conclusion_id"`
	UserID           string    `json:"user_id"`
	Numero           int       `json:"numero"`
	Nom              string    `json:"nom"`
	Description      string    `json:"description"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PieceUpdate carries the optional fields of a partial exhibit update.
// Nil means "leave unchanged".
type PieceUpdate struct {
	Nom         *string `json:"nom,omitempty"`
	Description *string `json:"description,omitempty"`
}
