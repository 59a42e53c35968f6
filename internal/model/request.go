package model

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type ResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type CreateArticleRequest struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Tags         []string `json:"tags"`
	CoverMediaID string   `json:"cover_media_id"`
}

// UpdateArticleRequest uses pointers so PATCH can distinguish "leave alone"
// from "set to empty".
type UpdateArticleRequest struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	Tags         *[]string `json:"tags"`
	CoverMediaID *string   `json:"cover_media_id"`
}

type CreateMediaRequest struct {
	Filename    string   `json:"filename"`
	ContentType string   `json:"content_type"`
	Kind        string   `json:"kind"`
	Tags        []string `json:"tags"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	PictureURL *string `json:"picture_url"`
}

type UploadTicket struct {
	MediaID   string `json:"media_id"`
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
	ExpiresIn int64  `json:"expires_in"`
}

type SignedURL struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

type SearchResult struct {
	Kind      string `json:"kind"` // "article" or "media"
	ID        string `json:"id"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet,omitempty"`
	CreatedAt string `json:"created_at"`
}
