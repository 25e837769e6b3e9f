package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// LoadClientConfig parses an OAuth client configuration as downloaded from
// the Google Cloud console ("web" or "installed" key). A non-empty
// redirectURL replaces the one in the file.
func LoadClientConfig(data []byte, redirectURL string, scopes ...string) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client configuration: %w", err)
	}
	if redirectURL != "" {
		conf.RedirectURL = redirectURL
	}
	return conf, nil
}

// TokenExchangeError is returned when the token endpoint rejects an
// authorization code.
type TokenExchangeError struct {
	StatusCode  int
	Code        string
	Description string
	Body        string
}

func (e *TokenExchangeError) Error() string {
	if e.Code != "" {
		if e.Description != "" {
			return fmt.Sprintf("token exchange failed with status %d: %s: %s", e.StatusCode, e.Code, e.Description)
		}
		return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// tokenResponse is the token endpoint's JSON reply.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	IDToken      string `json:"id_token"`
}

// tokenErrorResponse is the token endpoint's JSON error body.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// exchangeCode posts the authorization code to the token endpoint.
func exchangeCode(ctx context.Context, client *http.Client, conf *oauth2.Config, code string) (*tokenResponse, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {conf.ClientID},
		"client_secret": {conf.ClientSecret},
		"redirect_uri":  {conf.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, conf.Endpoint.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		exErr := &TokenExchangeError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		var errResp tokenErrorResponse
		if json.Unmarshal(body, &errResp) == nil {
			exErr.Code = errResp.Error
			exErr.Description = errResp.ErrorDescription
		}
		return nil, exErr
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &tokenResp, nil
}
