package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type Google struct {
	creds     Credentials
	endpoints Endpoints
	client    *http.Client
}

func NewGoogle(creds Credentials) *Google {
	return NewGoogleWithEndpoints(creds, Endpoints{
		Auth:    "https://accounts.google.com/o/oauth2/v2/auth",
		Token:   "https://oauth2.googleapis.com/token",
		Profile: "https://www.googleapis.com/oauth2/v2/userinfo",
	})
}

// NewGoogleWithEndpoints exists so tests can point the flow at a stub server.
func NewGoogleWithEndpoints(creds Credentials, endpoints Endpoints) *Google {
	return &Google{creds: creds, endpoints: endpoints, client: httpClient()}
}

func (g *Google) Name() string { return "google" }

func (g *Google) AuthCodeURL(state string) string {
	q := url.Values{
		"client_id":     {g.creds.ClientID},
		"redirect_uri":  {g.creds.RedirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
		"access_type":   {"online"},
	}
	return g.endpoints.Auth + "?" + q.Encode()
}

func (g *Google) Exchange(ctx context.Context, code string) (string, error) {
	return exchangeCode(ctx, g.client, g.endpoints.Token, g.creds, code)
}

func (g *Google) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	var raw struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON(ctx, g.client, g.endpoints.Profile, accessToken, &raw); err != nil {
		return Profile{}, err
	}

	return Profile{
		ID:         raw.ID,
		Email:      raw.Email,
		Name:       raw.Name,
		PictureURL: raw.Picture,
	}, nil
}

// itoa is shared by the GitHub provider, whose user ids are numeric.
func itoa(v int64) string { return strconv.FormatInt(v, 10) }
