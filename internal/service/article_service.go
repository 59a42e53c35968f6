package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"family-memories/internal/model"
	"family-memories/pkg/apierror"
)

// maxIDProbes bounds the same-day suffix search; past this the day is having
// a very strange amount of traffic and the client should retry.
const maxIDProbes = 100

type ArticleService struct {
	articles ArticleStore
	now      func() time.Time
}

func NewArticleService(articles ArticleStore) *ArticleService {
	return &ArticleService{articles: articles, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ArticleService) List(ctx context.Context) ([]model.Article, error) {
	return s.articles.List(ctx)
}

func (s *ArticleService) Get(ctx context.Context, id string) (model.Article, error) {
	return s.articles.Find(ctx, id)
}

func (s *ArticleService) Tags(ctx context.Context) ([]string, error) {
	return s.articles.ListTags(ctx)
}

func (s *ArticleService) Create(ctx context.Context, authorID string, req model.CreateArticleRequest) (model.Article, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Article{}, apierror.New("BAD_REQUEST", "a title is required", "", http.StatusBadRequest)
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return model.Article{}, err
	}

	now := s.now()
	a := model.Article{
		ID:           id,
		AuthorID:     authorID,
		Title:        title,
		Content:      req.Content,
		Tags:         cleanTags(req.Tags),
		CoverMediaID: strings.TrimSpace(req.CoverMediaID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return model.Article{}, err
	}

	return a, nil
}

func (s *ArticleService) Update(ctx context.Context, userID string, id string, req model.UpdateArticleRequest) (model.Article, error) {
	a, err := s.owned(ctx, userID, id)
	if err != nil {
		return model.Article{}, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return model.Article{}, apierror.New("BAD_REQUEST", "the title cannot be empty", "", http.StatusBadRequest)
		}
		a.Title = title
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Tags != nil {
		a.Tags = cleanTags(*req.Tags)
	}
	if req.CoverMediaID != nil {
		a.CoverMediaID = strings.TrimSpace(*req.CoverMediaID)
	}
	a.UpdatedAt = s.now()

	if err := s.articles.Update(ctx, a); err != nil {
		return model.Article{}, err
	}
	return a, nil
}

func (s *ArticleService) Delete(ctx context.Context, userID string, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.articles.Delete(ctx, id)
}

// owned resolves the article and hides it from non-owners: a mismatch reads
// as not-found, so existence is never confirmed to someone else.
func (s *ArticleService) owned(ctx context.Context, userID string, id string) (model.Article, error) {
	a, err := s.articles.Find(ctx, id)
	if err != nil {
		return model.Article{}, err
	}
	if a.AuthorID != userID {
		return model.Article{}, model.ErrArticleNotFound
	}
	return a, nil
}

// nextID generates the date-coded identifier: "YYMMDD" for the first article
// of the day, "YYMMDD-NN" for same-day siblings. Starts from the current
// same-day count and probes upward for a free slot.
func (s *ArticleService) nextID(ctx context.Context) (string, error) {
	prefix := s.now().Format("060102")

	seq, err := s.articles.CountByIDPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	for probe := 0; probe <= maxIDProbes; probe++ {
		candidate := prefix
		if seq+probe > 0 {
			candidate = fmt.Sprintf("%s-%02d", prefix, seq+probe+1)
		}

		taken, err := s.articles.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", apierror.New("UNAVAILABLE", "could not allocate an article id, please try again",
		"", http.StatusServiceUnavailable)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
