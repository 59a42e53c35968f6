package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"family-memories/internal/model"
	"family-memories/pkg/apierror"
)

// ObjectStore is the slice of the blob store the media service needs.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Put(ctx context.Context, key string, contentType string, body io.Reader) error
}

// Video playback URLs live longer than plain fetches so a long home movie
// doesn't die mid-stream.
const videoURLFactor = 4

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._/-]+`)

type MediaService struct {
	media   MediaStore
	objects ObjectStore
	urlTTL  time.Duration
}

func NewMediaService(media MediaStore, objects ObjectStore, urlTTL time.Duration) *MediaService {
	return &MediaService{media: media, objects: objects, urlTTL: urlTTL}
}

func (s *MediaService) List(ctx context.Context, ownerID string) ([]model.Media, error) {
	return s.media.ListByOwner(ctx, ownerID)
}

// CreateUploadTicket registers the media record and hands back a presigned
// PUT URL; the browser uploads the bytes itself.
func (s *MediaService) CreateUploadTicket(ctx context.Context, ownerID string, req model.CreateMediaRequest) (model.UploadTicket, error) {
	m, err := s.newRecord(ctx, ownerID, req)
	if err != nil {
		return model.UploadTicket{}, err
	}

	uploadURL, err := s.objects.PresignPut(ctx, m.StorageKey, m.ContentType, s.urlTTL)
	if err != nil {
		return model.UploadTicket{}, apierror.New("UPSTREAM_ERROR",
			"could not prepare the upload, please try again", err.Error(), http.StatusBadGateway)
	}

	if err := s.media.Create(ctx, m); err != nil {
		return model.UploadTicket{}, err
	}

	return model.UploadTicket{
		MediaID:   m.ID,
		UploadURL: uploadURL,
		Key:       m.StorageKey,
		ExpiresIn: int64(s.urlTTL.Seconds()),
	}, nil
}

// UploadDirect streams the request body straight through to the bucket, for
// clients that can't do a two-step presigned upload.
func (s *MediaService) UploadDirect(ctx context.Context, ownerID string, req model.CreateMediaRequest, body io.Reader) (model.Media, error) {
	m, err := s.newRecord(ctx, ownerID, req)
	if err != nil {
		return model.Media{}, err
	}

	if err := s.objects.Put(ctx, m.StorageKey, m.ContentType, body); err != nil {
		return model.Media{}, apierror.New("UPSTREAM_ERROR",
			"storing the upload failed, please try again", err.Error(), http.StatusBadGateway)
	}

	if err := s.media.Create(ctx, m); err != nil {
		return model.Media{}, err
	}
	return m, nil
}

func (s *MediaService) Delete(ctx context.Context, ownerID string, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	// The object stays in the bucket; a periodic sweep outside this service
	// reconciles orphans.
	return s.media.Delete(ctx, id)
}

// SignedGet returns a fetch URL for one of the owner's media records.
func (s *MediaService) SignedGet(ctx context.Context, ownerID string, id string) (model.SignedURL, error) {
	m, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return model.SignedURL{}, err
	}
	return s.sign(ctx, m, s.urlTTL)
}

// SignedGetByPath resolves media by its filename path, the catch-all lookup
// for requests like /api/media/2024/beach-day.jpg.
func (s *MediaService) SignedGetByPath(ctx context.Context, ownerID string, filename string) (model.SignedURL, error) {
	m, err := s.media.FindByFilename(ctx, strings.TrimPrefix(filename, "/"))
	if err != nil {
		return model.SignedURL{}, err
	}
	if m.OwnerID != ownerID {
		return model.SignedURL{}, model.ErrMediaNotFound
	}
	return s.sign(ctx, m, s.urlTTL)
}

// SignVideo returns a playback URL with the extended video lifetime.
func (s *MediaService) SignVideo(ctx context.Context, ownerID string, id string) (model.SignedURL, error) {
	m, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return model.SignedURL{}, err
	}
	if m.Kind != model.MediaKindVideo {
		return model.SignedURL{}, apierror.New("BAD_REQUEST", "this media is not a video", "", http.StatusBadRequest)
	}
	return s.sign(ctx, m, s.urlTTL*videoURLFactor)
}

// SignedGetShared signs a fetch URL without an ownership check, for media
// referenced by a public article (its cover image).
func (s *MediaService) SignedGetShared(ctx context.Context, id string) (model.SignedURL, error) {
	m, err := s.media.Find(ctx, id)
	if err != nil {
		return model.SignedURL{}, err
	}
	return s.sign(ctx, m, s.urlTTL)
}

func (s *MediaService) sign(ctx context.Context, m model.Media, ttl time.Duration) (model.SignedURL, error) {
	url, err := s.objects.PresignGet(ctx, m.StorageKey, ttl)
	if err != nil {
		return model.SignedURL{}, apierror.New("UPSTREAM_ERROR",
			"could not sign the media URL, please try again", err.Error(), http.StatusBadGateway)
	}
	return model.SignedURL{URL: url, ExpiresIn: int64(ttl.Seconds())}, nil
}

func (s *MediaService) owned(ctx context.Context, ownerID string, id string) (model.Media, error) {
	m, err := s.media.Find(ctx, id)
	if err != nil {
		return model.Media{}, err
	}
	if m.OwnerID != ownerID {
		// Not-found, not forbidden: existence stays private.
		return model.Media{}, model.ErrMediaNotFound
	}
	return m, nil
}

func (s *MediaService) newRecord(ctx context.Context, ownerID string, req model.CreateMediaRequest) (model.Media, error) {
	filename := sanitizeFilename(req.Filename)
	if filename == "" {
		return model.Media{}, apierror.New("BAD_REQUEST", "a filename is required", "", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.ContentType) == "" {
		return model.Media{}, apierror.New("BAD_REQUEST", "a content type is required", "", http.StatusBadRequest)
	}
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind != model.MediaKindImage && kind != model.MediaKindVideo {
		return model.Media{}, apierror.New("BAD_REQUEST", "kind must be image or video", kind, http.StatusBadRequest)
	}

	id := ulid.Make().String()

	// Filenames are unique across the family; a repeat upload of
	// beach.jpg gets a short id prefix rather than an error.
	if _, err := s.media.FindByFilename(ctx, filename); err == nil {
		filename = strings.ToLower(id[len(id)-8:]) + "-" + filename
	} else if !errors.Is(err, model.ErrMediaNotFound) {
		return model.Media{}, err
	}

	now := time.Now().UTC()
	return model.Media{
		ID:          id,
		OwnerID:     ownerID,
		Filename:    filename,
		ContentType: strings.TrimSpace(req.ContentType),
		Kind:        kind,
		Tags:        cleanTags(req.Tags),
		StorageKey:  "media/" + ownerID + "/" + id + "/" + path.Base(filename),
		CreatedAt:   now,
	}, nil
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, " ", "-")
	raw = unsafeFilenameChars.ReplaceAllString(raw, "")
	raw = strings.Trim(raw, "/")
	// Collapse traversal attempts rather than rejecting them.
	raw = strings.ReplaceAll(raw, "..", "")
	return raw
}
