package oauth

import (
	"context"
	"net/http"
	"net/url"
)

type GitHub struct {
	creds     Credentials
	endpoints Endpoints
	client    *http.Client
}

func NewGitHub(creds Credentials) *GitHub {
	return NewGitHubWithEndpoints(creds, Endpoints{
		Auth:    "https://github.com/login/oauth/authorize",
		Token:   "https://github.com/login/oauth/access_token",
		Profile: "https://api.github.com/user",
	})
}

func NewGitHubWithEndpoints(creds Credentials, endpoints Endpoints) *GitHub {
	return &GitHub{creds: creds, endpoints: endpoints, client: httpClient()}
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) AuthCodeURL(state string) string {
	q := url.Values{
		"client_id":    {g.creds.ClientID},
		"redirect_uri": {g.creds.RedirectURI},
		"scope":        {"read:user user:email"},
		"state":        {state},
	}
	return g.endpoints.Auth + "?" + q.Encode()
}

func (g *GitHub) Exchange(ctx context.Context, code string) (string, error) {
	return exchangeCode(ctx, g.client, g.endpoints.Token, g.creds, code)
}

func (g *GitHub) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	var raw struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Email     string `json:"email"` // null when the address is private
	}
	if err := fetchJSON(ctx, g.client, g.endpoints.Profile, accessToken, &raw); err != nil {
		return Profile{}, err
	}

	name := raw.Name
	if name == "" {
		name = raw.Login
	}

	return Profile{
		ID:         itoa(raw.ID),
		Email:      raw.Email,
		Name:       name,
		PictureURL: raw.AvatarURL,
	}, nil
}
