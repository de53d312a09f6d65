package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	appLog "portalcal/internal/log"
)

// DefaultLifetime is assumed when the token endpoint advertises no expiry.
const DefaultLifetime = time.Hour

// ErrRevoked means the refresh-token exchange was rejected by the server.
// The stored credentials can no longer be used and the program must stop.
var ErrRevoked = errors.New("auth: unable to refresh access token - has the token been revoked?")

// Credentials are the long-lived values needed for the exchange.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// TokenURL overrides Google's token endpoint.
	TokenURL string
}

// Manager holds the current access token and renews it once its advertised
// lifetime has elapsed. It is used from the single agenda loop; the mutex
// only guards Token(), which the HTTP transport calls per request.
type Manager struct {
	conf         *oauth2.Config
	refreshToken string
	httpClient   *http.Client
	now          func() time.Time

	mu       sync.Mutex
	token    *oauth2.Token
	obtained time.Time
	lifetime time.Duration
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces time.Now. The clock should carry a monotonic reading.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// NewManager builds a Manager for Google's OAuth endpoint with the read-only
// calendar scope.
func NewManager(creds Credentials, opts ...Option) *Manager {
	endpoint := google.Endpoint
	if creds.TokenURL != "" {
		endpoint.TokenURL = creds.TokenURL
	}
	m := &Manager{
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{calendar.CalendarReadonlyScope},
		},
		refreshToken: creds.RefreshToken,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Expired reports whether a refresh is due: no token yet, or the time since
// the last refresh is at least the advertised lifetime.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiredLocked()
}

func (m *Manager) expiredLocked() bool {
	if m.token == nil {
		return true
	}
	return m.now().Sub(m.obtained) >= m.lifetime
}

// Ensure refreshes the access token when it is due. A rejected exchange (4xx)
// returns an error wrapping ErrRevoked; transport failures and 5xx answers
// are returned as-is so callers can retry.
func (m *Manager) Ensure(ctx context.Context) error {
	if !m.Expired() {
		return nil
	}
	if m.hasToken() {
		appLog.Info("access token expired, refreshing")
	}
	return m.Refresh(ctx)
}

func (m *Manager) hasToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != nil
}

// Refresh performs the refresh-token exchange unconditionally.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	src := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: m.refreshToken})
	tok, err := src.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			status := statusOf(rerr)
			if status >= 500 {
				appLog.Warn("token endpoint unavailable", "status", status)
				return fmt.Errorf("auth: token refresh: %w", err)
			}
			appLog.Error("token refresh rejected", err, "status", status, "error_code", rerr.ErrorCode)
			return fmt.Errorf("%w: %v", ErrRevoked, err)
		}
		return fmt.Errorf("auth: token refresh: %w", err)
	}

	obtained := m.now()
	lifetime := m.lifetimeOf(tok, obtained)

	m.mu.Lock()
	m.token = tok
	m.obtained = obtained
	m.lifetime = lifetime
	// Google may rotate the refresh token; keep the newest one.
	if tok.RefreshToken != "" {
		m.refreshToken = tok.RefreshToken
	}
	m.mu.Unlock()

	appLog.Info("access token refreshed", "lifetime", lifetime.String())
	return nil
}

// Token implements oauth2.TokenSource with the current access token. It never
// refreshes; Ensure owns the refresh policy.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return nil, errors.New("auth: no access token yet")
	}
	return &oauth2.Token{
		AccessToken: m.token.AccessToken,
		TokenType:   m.token.Type(),
	}, nil
}

// Lifetime returns the advertised lifetime of the current token.
func (m *Manager) Lifetime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lifetime
}

func (m *Manager) lifetimeOf(tok *oauth2.Token, obtained time.Time) time.Duration {
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}
	if !tok.Expiry.IsZero() {
		if d := tok.Expiry.Sub(obtained).Round(time.Second); d > 0 {
			return d
		}
	}
	return DefaultLifetime
}

func statusOf(rerr *oauth2.RetrieveError) int {
	if rerr.Response == nil {
		return 0
	}
	return rerr.Response.StatusCode
}
