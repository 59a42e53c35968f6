package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"family-memories/internal/model"
)

const articleColumns = `a.id, a.author_id, a.title, a.content,
	COALESCE(a.cover_media_id, ''), a.created_at, a.updated_at,
	COALESCE(array_agg(t.tag ORDER BY t.tag) FILTER (WHERE t.tag IS NOT NULL), '{}')`

const articleFrom = ` FROM articles a
	LEFT JOIN article_tags t ON t.article_id = a.id`

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{pool: pool}
}

func scanArticle(row pgx.Row) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Content,
		&a.CoverMediaID, &a.CreatedAt, &a.UpdatedAt, &a.Tags)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Article{}, model.ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("scan article: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) List(ctx context.Context) ([]model.Article, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+articleColumns+articleFrom+`
		 GROUP BY a.id ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *ArticleRepository) Find(ctx context.Context, id string) (model.Article, error) {
	return scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+articleFrom+`
		 WHERE a.id = $1 GROUP BY a.id`, id))
}

func (r *ArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article exists: %w", err)
	}
	return exists, nil
}

// CountByIDPrefix counts same-day articles, the starting point for the
// date-coded id probe.
func (r *ArticleRepository) CountByIDPrefix(ctx context.Context, prefix string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE id = $1 OR id LIKE $1 || '-%'`, prefix).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles by prefix: %w", err)
	}
	return count, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a model.Article) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO articles (id, author_id, title, content, cover_media_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`,
			a.ID, a.AuthorID, a.Title, a.Content, a.CoverMediaID, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert article: %w", err)
		}
		return insertTags(ctx, tx, a.ID, a.Tags)
	})
}

// Update rewrites the row and its tag associations in one transaction, so a
// concurrent edit never observes the delete-then-insert half applied.
func (r *ArticleRepository) Update(ctx context.Context, a model.Article) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE articles SET title = $2, content = $3, cover_media_id = NULLIF($4, ''), updated_at = $5
			 WHERE id = $1`,
			a.ID, a.Title, a.Content, a.CoverMediaID, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrArticleNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, a.ID); err != nil {
			return fmt.Errorf("delete article tags: %w", err)
		}
		return insertTags(ctx, tx, a.ID, a.Tags)
	})
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) ListTags(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT tag FROM article_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Search does a case-insensitive substring match on title and content.
func (r *ArticleRepository) Search(ctx context.Context, query string) ([]model.Article, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+articleColumns+articleFrom+`
		 WHERE a.title ILIKE '%' || $1 || '%' OR a.content ILIKE '%' || $1 || '%'
		 GROUP BY a.id ORDER BY a.created_at DESC`, query)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *ArticleRepository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertTags(ctx context.Context, tx pgx.Tx, articleID string, tags []string) error {
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO article_tags (article_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, t); err != nil {
			return fmt.Errorf("insert article tag: %w", err)
		}
	}
	return nil
}
