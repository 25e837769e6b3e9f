package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/tablero/internal/instrumentation"
)

// SessionCookieName is the cookie carrying the browser session ID.
const SessionCookieName = "tablero_session"

const sessionCleanupInterval = 10 * time.Minute

// Session is the per-browser state kept between requests.
type Session struct {
	ID string
	// State is the OAuth state sent with the last login redirect.
	State string
	Email string

	lastAccess time.Time
}

// SessionManager keeps browser sessions in memory and expires idle ones.
type SessionManager struct {
	sessions       map[string]*Session
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	stopOnce       sync.Once
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
	now            func() time.Time
}

// NewSessionManager starts a manager whose sessions expire after timeout
// without access. metrics may be nil.
func NewSessionManager(timeout time.Duration, logger *slog.Logger, metrics *instrumentation.Metrics) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionManager{
		sessions:       make(map[string]*Session),
		cleanupTicker:  time.NewTicker(sessionCleanupInterval),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
		metrics:        metrics,
		now:            time.Now,
	}
	go m.cleanupLoop()
	return m
}

// Create registers a new empty session.
func (m *SessionManager) Create(ctx context.Context) *Session {
	s := &Session{ID: uuid.NewString(), lastAccess: m.now()}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.metrics.IncrementActiveSessions(ctx)
	return s.snapshot()
}

// Get returns a copy of the session and refreshes its last access time.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastAccess = m.now()
	return s.snapshot(), true
}

// Update applies fn to the stored session. It reports false when the
// session no longer exists.
func (m *SessionManager) Update(id string, fn func(*Session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	fn(s)
	s.lastAccess = m.now()
	return true
}

// Remove deletes the session if present.
func (m *SessionManager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.metrics.DecrementActiveSessions(ctx)
	}
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// FromRequest returns the session named by the request cookie, creating a
// new one and setting the cookie when it is missing or expired.
func (m *SessionManager) FromRequest(w http.ResponseWriter, r *http.Request, secure bool) *Session {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		if s, ok := m.Get(c.Value); ok {
			return s
		}
	}

	s := m.Create(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.sessionTimeout.Seconds()),
	})
	return s
}

// ClearCookie expires the session cookie in the browser.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// expire drops sessions idle for longer than the timeout and returns how
// many were removed.
func (m *SessionManager) expire(ctx context.Context) int {
	m.mu.Lock()
	now := m.now()
	expired := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastAccess) > m.sessionTimeout {
			delete(m.sessions, id)
			expired++
		}
	}
	m.mu.Unlock()

	for range expired {
		m.metrics.DecrementActiveSessions(ctx)
	}
	return expired
}

func (m *SessionManager) cleanupLoop() {
	for {
		select {
		case <-m.cleanupTicker.C:
			if n := m.expire(context.Background()); n > 0 {
				m.logger.Info("cleaned up expired sessions", slog.Int("count", n))
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		m.cleanupTicker.Stop()
		close(m.cleanupDone)
	})
}

func (s *Session) snapshot() *Session {
	c := *s
	return &c
}
