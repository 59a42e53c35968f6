package service

import (
	"context"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"family-memories/internal/model"
	"family-memories/internal/oauth"
	"family-memories/pkg/apierror"
)

// OAuthService drives the federated login flows. The handler owns the HTTP
// pieces (state cookie, redirects); this layer owns the provider round-trips
// and the upsert.
type OAuthService struct {
	providers map[string]oauth.Provider
	users     UserStore
}

func NewOAuthService(users UserStore, providers ...oauth.Provider) *OAuthService {
	byName := make(map[string]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthService{providers: byName, users: users}
}

func (s *OAuthService) provider(name string) (oauth.Provider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, apierror.New("NOT_FOUND", "unknown identity provider", name, http.StatusNotFound)
	}
	return p, nil
}

// AuthURL builds the authorization redirect for the named provider.
func (s *OAuthService) AuthURL(providerName string, state string) (string, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

// Complete runs the back half of the callback: code exchange, profile fetch
// and upsert by (provider, provider_user_id). The steps are strictly
// sequential; a later step never runs after an earlier failure.
func (s *OAuthService) Complete(ctx context.Context, providerName string, code string) (model.User, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return model.User{}, err
	}

	accessToken, err := p.Exchange(ctx, code)
	if err != nil {
		return model.User{}, apierror.New("UPSTREAM_ERROR",
			"the identity provider rejected the login, please try again",
			err.Error(), http.StatusBadGateway)
	}

	profile, err := p.FetchProfile(ctx, accessToken)
	if err != nil {
		return model.User{}, apierror.New("UPSTREAM_ERROR",
			"could not read your profile from the identity provider, please try again",
			err.Error(), http.StatusBadGateway)
	}
	if profile.ID == "" {
		return model.User{}, apierror.New("UPSTREAM_ERROR",
			"the identity provider returned an unusable profile",
			"empty provider user id", http.StatusBadGateway)
	}

	now := time.Now().UTC()
	return s.users.UpsertByProvider(ctx, model.User{
		ID:             ulid.Make().String(),
		Provider:       p.Name(),
		ProviderUserID: profile.ID,
		Email:          profile.Email,
		Name:           profile.Name,
		PictureURL:     profile.PictureURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}
