package service

import (
	"context"

	"family-memories/internal/model"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them in production; tests plug in in-memory fakes.

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindEmailAccount(ctx context.Context, email string) (model.User, error)
	FindPasswordlessByEmail(ctx context.Context, email string) (model.User, error)
	FindByProvider(ctx context.Context, provider string, providerUserID string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	UpsertByProvider(ctx context.Context, u model.User) (model.User, error)
	UpdateProfile(ctx context.Context, id string, name string, pictureURL string) (model.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	EmailAccountExists(ctx context.Context, email string) (bool, error)
}

type ResetTokenStore interface {
	Create(ctx context.Context, t model.PasswordResetToken) error
	Find(ctx context.Context, token string) (model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type ArticleStore interface {
	List(ctx context.Context) ([]model.Article, error)
	Find(ctx context.Context, id string) (model.Article, error)
	Exists(ctx context.Context, id string) (bool, error)
	CountByIDPrefix(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, a model.Article) error
	Update(ctx context.Context, a model.Article) error
	Delete(ctx context.Context, id string) error
	ListTags(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]model.Article, error)
}

type MediaStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.Media, error)
	Find(ctx context.Context, id string) (model.Media, error)
	FindByFilename(ctx context.Context, filename string) (model.Media, error)
	Create(ctx context.Context, m model.Media) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, ownerID string, query string) ([]model.Media, error)
}
