// Package oauth implements the federated login strategies. Each provider
// turns an authorization code into a verified profile; the service layer
// handles state checking, user upsert and session minting.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Profile holds the normalized identity facts fetched from a provider.
// Never trust client-supplied values for any of these.
type Profile struct {
	ID         string
	Email      string
	Name       string
	PictureURL string
}

// Provider is one federated identity strategy.
type Provider interface {
	// Name is the identifier used in URLs and stored in users.provider.
	Name() string

	// AuthCodeURL builds the authorization redirect with state embedded.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for an access token via a
	// server-to-server POST.
	Exchange(ctx context.Context, code string) (string, error)

	// FetchProfile reads the provider's profile endpoint with the token.
	FetchProfile(ctx context.Context, accessToken string) (Profile, error)
}

// Credentials is the per-provider client registration.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Endpoints can be overridden to point at a stub server in tests.
type Endpoints struct {
	Auth    string
	Token   string
	Profile string
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// exchangeCode performs the standard authorization_code token POST and
// returns the access token.
func exchangeCode(ctx context.Context, client *http.Client, tokenURL string, creds Credentials, code string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"redirect_uri":  {creds.RedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access_token")
	}

	return parsed.AccessToken, nil
}

func fetchJSON(ctx context.Context, client *http.Client, endpoint string, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("profile fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("profile endpoint returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
