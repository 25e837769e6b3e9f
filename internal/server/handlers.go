package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/tablero/internal/calendar"
	"github.com/teemow/tablero/internal/classroom"
	"github.com/teemow/tablero/internal/gmail"
	"github.com/teemow/tablero/internal/google"
	"github.com/teemow/tablero/internal/instrumentation"
	"github.com/teemow/tablero/internal/logging"
	"github.com/teemow/tablero/internal/view"
)

type credentialKey struct{}

// credentialFrom returns the credential loaded by requireCredential.
func credentialFrom(ctx context.Context) *google.Credential {
	cred, _ := ctx.Value(credentialKey{}).(*google.Credential)
	return cred
}

// requireCredential redirects to /login unless a credential is stored.
func (s *Server) requireCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred, err := s.auth.CurrentCredential()
		if err != nil {
			s.serverError(w, r, "failed to load credential", err)
			return
		}
		if cred == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), credentialKey{}, cred)))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cred, err := s.auth.CurrentCredential()
	if err != nil {
		s.serverError(w, r, "failed to load credential", err)
		return
	}

	page := view.IndexPage{LoggedIn: cred != nil}
	if sess, ok := s.existingSession(r); ok {
		page.Email = sess.Email
	}
	s.render(w, r, http.StatusOK, view.PageIndex, page)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := s.auth.BeginLogin()
	if err != nil {
		s.serverError(w, r, "failed to start login", err)
		return
	}

	sess := s.sessions.FromRequest(w, r, s.secureCookies)
	s.sessions.Update(sess.ID, func(sess *Session) {
		sess.State = req.State
		sess.Email = ""
	})

	http.Redirect(w, r, req.URL, http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithOperation(s.logger, "oauth_callback")
	query := r.URL.Query()

	if reason := query.Get("error"); reason != "" {
		logger.Warn("authorization denied", slog.String("reason", reason))
	}

	code := query.Get("code")
	if code == "" {
		s.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultFailure)
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	sess := s.sessions.FromRequest(w, r, s.secureCookies)
	if state := query.Get("state"); sess.State == "" || state != sess.State {
		// Not enforced; a stale or missing session still completes sign-in.
		logger.Warn("oauth state mismatch", slog.Bool("session_has_state", sess.State != ""))
	}

	var email string
	err := s.observe(r.Context(), instrumentation.ServiceOAuth, instrumentation.OperationExchange,
		func(ctx context.Context) error {
			var err error
			_, email, err = s.auth.HandleCallback(ctx, code)
			return err
		})
	if err != nil {
		s.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultFailure)

		var exchangeErr *google.TokenExchangeError
		if errors.As(err, &exchangeErr) {
			logger.Error("token exchange rejected",
				slog.Int("upstream_status", exchangeErr.StatusCode),
				slog.String("code", exchangeErr.Code),
			)
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			return
		}
		s.serverError(w, r, "failed to complete sign-in", err)
		return
	}

	s.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultSuccess)
	s.sessions.Update(sess.ID, func(sess *Session) {
		sess.State = ""
		sess.Email = email
	})

	http.Redirect(w, r, "/cuentas", http.StatusFound)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.FromRequest(w, r, s.secureCookies)
	email := sess.Email

	// A restarted process keeps the credential file but loses sessions.
	if email == "" {
		err := s.observe(r.Context(), instrumentation.ServiceOAuth, instrumentation.OperationUserinfo,
			func(ctx context.Context) error {
				var err error
				email, err = s.auth.FetchEmail(ctx, credentialFrom(r.Context()))
				return err
			})
		if err != nil {
			s.serverError(w, r, "failed to fetch account email", err)
			return
		}
		s.sessions.Update(sess.ID, func(sess *Session) { sess.Email = email })
	}

	s.render(w, r, http.StatusOK, view.PageAccount, view.AccountPage{Email: email})
}

func (s *Server) handleMail(w http.ResponseWriter, r *http.Request) {
	client, err := s.providers.Mail(r.Context(), credentialFrom(r.Context()))
	if err != nil {
		s.serverError(w, r, "failed to create mail client", err)
		return
	}

	var mails []gmail.Mail
	err = s.observe(r.Context(), instrumentation.ServiceGmail, instrumentation.OperationList,
		func(ctx context.Context) error {
			var err error
			mails, err = client.ListRecent(ctx, gmail.DefaultRecentLimit)
			return err
		})
	if err != nil {
		s.serverError(w, r, "failed to list mail", err)
		return
	}

	s.render(w, r, http.StatusOK, view.PageMail, view.MailPage{Mails: mails})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	client, err := s.providers.Courses(r.Context(), credentialFrom(r.Context()))
	if err != nil {
		s.serverError(w, r, "failed to create classroom client", err)
		return
	}

	var posts map[string][]classroom.Post
	err = s.observe(r.Context(), instrumentation.ServiceClassroom, instrumentation.OperationList,
		func(ctx context.Context) error {
			var err error
			posts, err = client.PostsByCourse(ctx)
			return err
		})
	if err != nil {
		s.serverError(w, r, "failed to list course posts", err)
		return
	}

	s.render(w, r, http.StatusOK, view.PageCourses, view.CoursePage{PostsByCourse: posts})
}

// handleCalendar shows the current month. On POST it first validates the
// form and creates the event; an invalid form re-renders with 400 and
// creates nothing.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	client, err := s.providers.Calendar(r.Context(), credentialFrom(r.Context()))
	if err != nil {
		s.serverError(w, r, "failed to create calendar client", err)
		return
	}

	status := http.StatusOK
	var (
		form      calendar.EventForm
		formError string
	)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		form = calendar.ParseEventForm(r.PostForm)

		if err := form.Validate(); err != nil {
			status = http.StatusBadRequest
			formError = calendar.ErrorMessage(err)
		} else {
			err := s.observe(r.Context(), instrumentation.ServiceCalendar, instrumentation.OperationCreate,
				func(ctx context.Context) error {
					_, err := client.CreateEvent(ctx, form)
					return err
				})
			if err != nil {
				s.serverError(w, r, "failed to create event", err)
				return
			}
			form = calendar.EventForm{}
		}
	}

	now := s.now()
	year, month := now.Year(), now.Month()

	var byDay map[int][]calendar.Event
	err = s.observe(r.Context(), instrumentation.ServiceCalendar, instrumentation.OperationList,
		func(ctx context.Context) error {
			var err error
			byDay, err = client.MonthEvents(ctx, year, month)
			return err
		})
	if err != nil {
		s.serverError(w, r, "failed to list events", err)
		return
	}

	s.render(w, r, status, view.PageCalendar, view.CalendarPage{
		Year:        year,
		Month:       month,
		Weeks:       view.MonthGrid(year, month),
		EventsByDay: byDay,
		Form:        form,
		FormError:   formError,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(); err != nil {
		s.serverError(w, r, "failed to clear credential", err)
		return
	}

	if c, err := r.Cookie(SessionCookieName); err == nil {
		s.sessions.Remove(r.Context(), c.Value)
	}
	ClearCookie(w, s.secureCookies)

	s.logger.Info("user signed out")
	http.Redirect(w, r, "/", http.StatusFound)
}

// existingSession looks up the request's session without creating one.
func (s *Server) existingSession(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// observe runs one Google call under a span and the API metrics, then logs
// its outcome at debug level.
func (s *Server) observe(ctx context.Context, service, operation string, fn func(context.Context) error) error {
	start := time.Now()
	err := instrumentation.Observe(ctx, s.metrics, service, operation, fn)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	logging.WithService(s.logger, service).DebugContext(ctx, "google api call",
		logging.Operation(operation),
		logging.Status(status),
		logging.Duration(time.Since(start)),
		logging.Err(err),
	)
	return err
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := s.renderer.Render(w, status, page, data); err != nil {
		s.serverError(w, r, "failed to render page", err)
	}
}

// serverError logs err and answers 500 without leaking details.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg,
		logging.Route(routePattern(r)),
		logging.Err(err),
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
