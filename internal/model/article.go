package model

import "time"

// Article identifiers are date-coded: "250830" for the first memory written
// that day, "250830-02" and up for same-day siblings.
type Article struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	CoverMediaID string    `json:"cover_media_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
