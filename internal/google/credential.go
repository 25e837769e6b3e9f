package google

import (
	"slices"

	"golang.org/x/oauth2"
)

// Credential is the OAuth token bundle authorizing API calls on the user's
// behalf. The JSON layout matches Google's authorized-user file format.
type Credential struct {
	AccessToken  string   `json:"token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
}

// TokenSource returns a token source that always yields the stored access
// token. It never refreshes.
func (c *Credential) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
	})
}

// Clone returns a deep copy of the credential.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Scopes = slices.Clone(c.Scopes)
	return &clone
}
