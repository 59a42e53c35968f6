package service

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"family-memories/internal/model"
	"family-memories/pkg/apierror"
)

const snippetLength = 140

// SearchService is the "good enough" aggregator: substring matches over
// articles and the caller's media, merged and sorted by recency in-process.
// It is deliberately not a ranked or indexed search engine.
type SearchService struct {
	articles ArticleStore
	media    MediaStore
}

func NewSearchService(articles ArticleStore, media MediaStore) *SearchService {
	return &SearchService{articles: articles, media: media}
}

func (s *SearchService) Search(ctx context.Context, ownerID string, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierror.New("BAD_REQUEST", "a search query is required", "", http.StatusBadRequest)
	}

	articles, err := s.articles.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	media, err := s.media.Search(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}

	type dated struct {
		result model.SearchResult
		at     time.Time
	}

	merged := make([]dated, 0, len(articles)+len(media))
	for _, a := range articles {
		merged = append(merged, dated{
			result: model.SearchResult{
				Kind:      "article",
				ID:        a.ID,
				Title:     a.Title,
				Snippet:   snippet(a.Content),
				CreatedAt: a.CreatedAt.Format(time.RFC3339),
			},
			at: a.CreatedAt,
		})
	}
	for _, m := range media {
		merged = append(merged, dated{
			result: model.SearchResult{
				Kind:      "media",
				ID:        m.ID,
				Title:     m.Filename,
				CreatedAt: m.CreatedAt.Format(time.RFC3339),
			},
			at: m.CreatedAt,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].at.After(merged[j].at)
	})

	results := make([]model.SearchResult, len(merged))
	for i, d := range merged {
		results[i] = d.result
	}
	return results, nil
}

func snippet(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}

	// Cut on a rune boundary so multi-byte text never turns into mojibake.
	cut := string(runes[:snippetLength])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
