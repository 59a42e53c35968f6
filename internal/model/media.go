package model

import "time"

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media is the database record for one stored object. The bytes themselves
// live in the bucket under StorageKey; the server only hands out signed URLs.
type Media struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Kind        string    `json:"kind"`
	Tags        []string  `json:"tags"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
