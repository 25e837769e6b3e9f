package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/teemow/tablero/internal/logging"
)

// DefaultExchangeTimeout bounds a single token endpoint round trip.
const DefaultExchangeTimeout = 30 * time.Second

// LoginRequest is the outcome of BeginLogin: where to send the browser and
// the state value to remember for the callback.
type LoginRequest struct {
	URL   string
	State string
}

// Flow drives the authorization code flow for the single dashboard user.
type Flow struct {
	config     *oauth2.Config
	store      CredentialStore
	httpClient *http.Client
	apiOptions []option.ClientOption
	logger     *slog.Logger
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithHTTPClient sets the client used for the token exchange and as the
// base transport for the userinfo call.
func WithHTTPClient(client *http.Client) FlowOption {
	return func(f *Flow) {
		f.httpClient = client
	}
}

// WithAPIOptions appends client options for the userinfo service.
func WithAPIOptions(opts ...option.ClientOption) FlowOption {
	return func(f *Flow) {
		f.apiOptions = append(f.apiOptions, opts...)
	}
}

// WithLogger sets the flow's logger.
func WithLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFlow creates a flow for the given client configuration and store.
func NewFlow(config *oauth2.Config, store CredentialStore, opts ...FlowOption) *Flow {
	f := &Flow{
		config:     config,
		store:      store,
		httpClient: &http.Client{Timeout: DefaultExchangeTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BeginLogin discards any stored credential and returns the consent URL
// together with a fresh state value. Offline access and forced consent make
// Google issue a refresh token every time.
func (f *Flow) BeginLogin() (*LoginRequest, error) {
	if err := f.store.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear credential before login: %w", err)
	}

	state := uuid.NewString()
	authURL := f.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)

	logging.WithOperation(f.logger, "begin_login").Debug("built authorization URL")

	return &LoginRequest{URL: authURL, State: state}, nil
}

// HandleCallback exchanges the authorization code, persists the resulting
// credential and resolves the user's email. A rejected exchange is returned
// as *TokenExchangeError and is not retried.
func (f *Flow) HandleCallback(ctx context.Context, code string) (*Credential, string, error) {
	logger := logging.WithOperation(f.logger, "handle_callback")

	tok, err := exchangeCode(ctx, f.httpClient, f.config, code)
	if err != nil {
		logger.Warn("authorization code exchange failed", logging.Err(err))
		return nil, "", err
	}

	scopes := f.config.Scopes
	if tok.Scope != "" {
		scopes = strings.Fields(tok.Scope)
	}

	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     f.config.Endpoint.TokenURL,
		ClientID:     f.config.ClientID,
		ClientSecret: f.config.ClientSecret,
		Scopes:       slices.Clone(scopes),
	}

	if err := f.store.Save(cred); err != nil {
		return nil, "", fmt.Errorf("failed to save credential: %w", err)
	}

	logger.Debug("credential saved",
		slog.String("access_token", logging.SanitizeToken(cred.AccessToken)),
		slog.Bool("has_refresh_token", cred.RefreshToken != ""),
	)

	email, err := f.FetchEmail(ctx, cred)
	if err != nil {
		return cred, "", err
	}

	logger.Info("user signed in", logging.UserHash(email))
	return cred, email, nil
}

// FetchEmail asks the userinfo endpoint for the credential owner's email.
func (f *Flow) FetchEmail(ctx context.Context, cred *Credential) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)

	opts := append([]option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, cred.TokenSource())),
	}, f.apiOptions...)

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to fetch user info: %w", err)
	}
	return info.Email, nil
}

// CurrentCredential returns the stored credential, or nil when the user is
// not logged in.
func (f *Flow) CurrentCredential() (*Credential, error) {
	return f.store.Load()
}

// Logout removes the stored credential.
func (f *Flow) Logout() error {
	return f.store.Clear()
}
