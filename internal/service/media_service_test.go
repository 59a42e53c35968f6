package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"family-memories/internal/model"
	"family-memories/pkg/apierror"
)

func newMediaFixture() (*MediaService, *fakeMediaStore, *fakeObjectStore) {
	store := newFakeMediaStore()
	objects := newFakeObjectStore()
	svc := NewMediaService(store, objects, 15*time.Minute)
	return svc, store, objects
}

func TestCreateUploadTicket(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("registers the record and presigns the upload", func(t *testing.T) {
		svc, store, _ := newMediaFixture()

		ticket, err := svc.CreateUploadTicket(ctx, "u1", model.CreateMediaRequest{
			Filename:    "beach day.jpg",
			ContentType: "image/jpeg",
			Kind:        "image",
			Tags:        []string{"Beach"},
		})
		require.NoError(t, err)
		require.NotEmpty(t, ticket.MediaID)
		require.Equal(t, "https://bucket.test/put/"+ticket.Key, ticket.UploadURL)
		require.Equal(t, int64(900), ticket.ExpiresIn)

		m, err := store.Find(ctx, ticket.MediaID)
		require.NoError(t, err)
		require.Equal(t, "u1", m.OwnerID)
		require.Equal(t, "beach-day.jpg", m.Filename)
		require.Equal(t, []string{"beach"}, m.Tags)
		require.Equal(t, "media/u1/"+m.ID+"/beach-day.jpg", m.StorageKey)
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		svc, _, _ := newMediaFixture()

		_, err := svc.CreateUploadTicket(ctx, "u1", model.CreateMediaRequest{
			Filename:    "doc.pdf",
			ContentType: "application/pdf",
			Kind:        "document",
		})
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})

	t.Run("deduplicates a repeated filename", func(t *testing.T) {
		svc, store, _ := newMediaFixture()
		req := model.CreateMediaRequest{Filename: "beach.jpg", ContentType: "image/jpeg", Kind: "image"}

		first, err := svc.CreateUploadTicket(ctx, "u1", req)
		require.NoError(t, err)
		second, err := svc.CreateUploadTicket(ctx, "u1", req)
		require.NoError(t, err)

		a, _ := store.Find(ctx, first.MediaID)
		b, _ := store.Find(ctx, second.MediaID)
		require.Equal(t, "beach.jpg", a.Filename)
		require.NotEqual(t, a.Filename, b.Filename)
		require.True(t, strings.HasSuffix(b.Filename, "-beach.jpg"))
	})
}

func TestUploadDirect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, objects := newMediaFixture()

	m, err := svc.UploadDirect(ctx, "u1", model.CreateMediaRequest{
		Filename:    "movie.mp4",
		ContentType: "video/mp4",
		Kind:        "video",
	}, strings.NewReader("the-bytes"))
	require.NoError(t, err)

	require.Equal(t, []byte("the-bytes"), objects.objects[m.StorageKey])
	_, err = store.Find(ctx, m.ID)
	require.NoError(t, err)
}

func TestSignedGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newMediaFixture()
	require.NoError(t, store.Create(ctx, model.Media{
		ID: "m1", OwnerID: "u1", Filename: "2024/beach.jpg",
		Kind: model.MediaKindImage, StorageKey: "media/u1/m1/beach.jpg",
	}))

	t.Run("signs the owner's media", func(t *testing.T) {
		signed, err := svc.SignedGet(ctx, "u1", "m1")
		require.NoError(t, err)
		require.Equal(t, "https://bucket.test/get/media/u1/m1/beach.jpg", signed.URL)
		require.Equal(t, int64(900), signed.ExpiresIn)
	})

	t.Run("someone else's media reads as not found", func(t *testing.T) {
		_, err := svc.SignedGet(ctx, "u2", "m1")
		require.True(t, errors.Is(err, model.ErrMediaNotFound))
	})

	t.Run("resolves by filename path", func(t *testing.T) {
		signed, err := svc.SignedGetByPath(ctx, "u1", "/2024/beach.jpg")
		require.NoError(t, err)
		require.NotEmpty(t, signed.URL)

		_, err = svc.SignedGetByPath(ctx, "u2", "2024/beach.jpg")
		require.True(t, errors.Is(err, model.ErrMediaNotFound))
	})

	t.Run("shared lookup skips the ownership check", func(t *testing.T) {
		signed, err := svc.SignedGetShared(ctx, "m1")
		require.NoError(t, err)
		require.NotEmpty(t, signed.URL)
	})
}

func TestSignVideo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newMediaFixture()
	require.NoError(t, store.Create(ctx, model.Media{
		ID: "v1", OwnerID: "u1", Kind: model.MediaKindVideo, StorageKey: "media/u1/v1/movie.mp4",
	}))
	require.NoError(t, store.Create(ctx, model.Media{
		ID: "p1", OwnerID: "u1", Kind: model.MediaKindImage, StorageKey: "media/u1/p1/pic.jpg",
	}))

	t.Run("videos get the extended lifetime", func(t *testing.T) {
		signed, err := svc.SignVideo(ctx, "u1", "v1")
		require.NoError(t, err)
		require.Equal(t, int64(3600), signed.ExpiresIn)
	})

	t.Run("rejects non-video media", func(t *testing.T) {
		_, err := svc.SignVideo(ctx, "u1", "p1")
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})
}

func TestMediaDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newMediaFixture()
	require.NoError(t, store.Create(ctx, model.Media{ID: "m1", OwnerID: "u1"}))

	require.True(t, errors.Is(svc.Delete(ctx, "u2", "m1"), model.ErrMediaNotFound))
	require.NoError(t, svc.Delete(ctx, "u1", "m1"))
	_, err := store.Find(ctx, "m1")
	require.True(t, errors.Is(err, model.ErrMediaNotFound))
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "beach-day.jpg", sanitizeFilename("  beach day.jpg "))
	require.Equal(t, "2024/beach.jpg", sanitizeFilename("/2024/beach.jpg/"))
	require.NotContains(t, sanitizeFilename("../../etc/passwd"), "..")
	require.Equal(t, "", sanitizeFilename("  "))
}
