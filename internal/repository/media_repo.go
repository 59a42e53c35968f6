package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"family-memories/internal/model"
)

const mediaColumns = `id, owner_id, filename, content_type, kind, tags, storage_key, created_at`

type MediaRepository struct {
	pool *pgxpool.Pool
}

func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

func scanMedia(row pgx.Row) (model.Media, error) {
	var m model.Media
	err := row.Scan(&m.ID, &m.OwnerID, &m.Filename, &m.ContentType,
		&m.Kind, &m.Tags, &m.StorageKey, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Media{}, model.ErrMediaNotFound
	}
	if err != nil {
		return model.Media{}, fmt.Errorf("scan media: %w", err)
	}
	return m, nil
}

func (r *MediaRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Media, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	return collectMedia(rows)
}

func (r *MediaRepository) Find(ctx context.Context, id string) (model.Media, error) {
	return scanMedia(r.pool.QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
}

func (r *MediaRepository) FindByFilename(ctx context.Context, filename string) (model.Media, error) {
	return scanMedia(r.pool.QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE filename = $1`, filename))
}

func (r *MediaRepository) Create(ctx context.Context, m model.Media) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO media (id, owner_id, filename, content_type, kind, tags, storage_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.OwnerID, m.Filename, m.ContentType, m.Kind, m.Tags, m.StorageKey, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create media: %w", err)
	}
	return nil
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMediaNotFound
	}
	return nil
}

// Search matches the owner's media by filename or tag substring,
// case-insensitively.
func (r *MediaRepository) Search(ctx context.Context, ownerID string, query string) ([]model.Media, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+mediaColumns+` FROM media
		 WHERE owner_id = $1
		   AND (filename ILIKE '%' || $2 || '%'
		        OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE '%' || $2 || '%'))
		 ORDER BY created_at DESC`, ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("search media: %w", err)
	}
	defer rows.Close()

	return collectMedia(rows)
}

func collectMedia(rows pgx.Rows) ([]model.Media, error) {
	media := make([]model.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}
