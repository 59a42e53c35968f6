package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"family-memories/internal/model"
)

// In-memory stands-ins for the pgx repositories.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) FindEmailAccount(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.PasswordHash != "" && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUserStore) FindPasswordlessByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.PasswordHash == "" && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUserStore) FindByProvider(_ context.Context, provider string, providerUserID string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderUserID == providerUserID {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.users[u.ID]; dup {
		return model.ErrUserAlreadyExists
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) UpsertByProvider(_ context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.users {
		if existing.Provider == u.Provider && existing.ProviderUserID == u.ProviderUserID {
			existing.Name = u.Name
			existing.PictureURL = u.PictureURL
			existing.UpdatedAt = u.UpdatedAt
			f.users[id] = existing
			return existing, nil
		}
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id string, name string, pictureURL string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	u.Name = name
	u.PictureURL = pictureURL
	f.users[id] = u
	return u, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) EmailAccountExists(_ context.Context, email string) (bool, error) {
	_, err := f.FindEmailAccount(context.Background(), email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

type fakeResetStore struct {
	mu     sync.Mutex
	tokens map[string]model.PasswordResetToken
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{tokens: map[string]model.PasswordResetToken{}}
}

func (f *fakeResetStore) Create(_ context.Context, t model.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[t.Token] = t
	return nil
}

func (f *fakeResetStore) Find(_ context.Context, token string) (model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return model.PasswordResetToken{}, model.ErrResetTokenNotFound
	}
	return t, nil
}

func (f *fakeResetStore) MarkUsed(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return model.ErrResetTokenNotFound
	}
	if t.UsedAt != nil {
		return model.ErrResetTokenUsed
	}
	now := time.Now().UTC()
	t.UsedAt = &now
	f.tokens[token] = t
	return nil
}

func (f *fakeResetStore) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for token, t := range f.tokens {
		if time.Now().UTC().After(t.ExpiresAt) {
			delete(f.tokens, token)
			purged++
		}
	}
	return purged, nil
}

type fakeArticleStore struct {
	mu       sync.Mutex
	articles map[string]model.Article
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: map[string]model.Article{}}
}

func (f *fakeArticleStore) List(_ context.Context) ([]model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Article, 0, len(f.articles))
	for _, a := range f.articles {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeArticleStore) Find(_ context.Context, id string) (model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return model.Article{}, model.ErrArticleNotFound
	}
	return a, nil
}

func (f *fakeArticleStore) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.articles[id]
	return ok, nil
}

func (f *fakeArticleStore) CountByIDPrefix(_ context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for id := range f.articles {
		if id == prefix || strings.HasPrefix(id, prefix+"-") {
			count++
		}
	}
	return count, nil
}

func (f *fakeArticleStore) Create(_ context.Context, a model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles[a.ID] = a
	return nil
}

func (f *fakeArticleStore) Update(_ context.Context, a model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[a.ID]; !ok {
		return model.ErrArticleNotFound
	}
	f.articles[a.ID] = a
	return nil
}

func (f *fakeArticleStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[id]; !ok {
		return model.ErrArticleNotFound
	}
	delete(f.articles, id)
	return nil
}

func (f *fakeArticleStore) ListTags(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, a := range f.articles {
		for _, t := range a.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeArticleStore) Search(_ context.Context, query string) ([]model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	query = strings.ToLower(query)
	out := []model.Article{}
	for _, a := range f.articles {
		if strings.Contains(strings.ToLower(a.Title), query) ||
			strings.Contains(strings.ToLower(a.Content), query) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeMediaStore struct {
	mu    sync.Mutex
	media map[string]model.Media
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{media: map[string]model.Media{}}
}

func (f *fakeMediaStore) ListByOwner(_ context.Context, ownerID string) ([]model.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Media{}
	for _, m := range f.media {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMediaStore) Find(_ context.Context, id string) (model.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.media[id]
	if !ok {
		return model.Media{}, model.ErrMediaNotFound
	}
	return m, nil
}

func (f *fakeMediaStore) FindByFilename(_ context.Context, filename string) (model.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.media {
		if m.Filename == filename {
			return m, nil
		}
	}
	return model.Media{}, model.ErrMediaNotFound
}

func (f *fakeMediaStore) Create(_ context.Context, m model.Media) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media[m.ID] = m
	return nil
}

func (f *fakeMediaStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.media[id]; !ok {
		return model.ErrMediaNotFound
	}
	delete(f.media, id)
	return nil
}

func (f *fakeMediaStore) Search(_ context.Context, ownerID string, query string) ([]model.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	query = strings.ToLower(query)
	out := []model.Media{}
	for _, m := range f.media {
		if m.OwnerID != ownerID {
			continue
		}
		matched := strings.Contains(strings.ToLower(m.Filename), query)
		for _, t := range m.Tags {
			if strings.Contains(t, query) {
				matched = true
			}
		}
		if matched {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) PresignPut(_ context.Context, key string, _ string, _ time.Duration) (string, error) {
	return "https://bucket.test/put/" + key, nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.test/get/" + key, nil
}

func (f *fakeObjectStore) Put(_ context.Context, key string, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeMailer) Send(_ context.Context, to string, _ string, html string) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+"|"+html)
	return nil
}
