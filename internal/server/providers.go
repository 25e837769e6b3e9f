package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/api/option"

	"github.com/teemow/tablero/internal/calendar"
	"github.com/teemow/tablero/internal/classroom"
	"github.com/teemow/tablero/internal/gmail"
	"github.com/teemow/tablero/internal/google"
	"github.com/teemow/tablero/internal/instrumentation"
	"github.com/teemow/tablero/internal/logging"
)

// Authenticator runs the OAuth flow. *google.Flow implements it.
type Authenticator interface {
	BeginLogin() (*google.LoginRequest, error)
	HandleCallback(ctx context.Context, code string) (*google.Credential, string, error)
	FetchEmail(ctx context.Context, cred *google.Credential) (string, error)
	CurrentCredential() (*google.Credential, error)
	Logout() error
}

// MailReader lists recent messages.
type MailReader interface {
	ListRecent(ctx context.Context, limit int64) ([]gmail.Mail, error)
}

// CourseReader collects the newest posts of every course.
type CourseReader interface {
	PostsByCourse(ctx context.Context) (map[string][]classroom.Post, error)
}

// CalendarService reads and writes the primary calendar.
type CalendarService interface {
	MonthEvents(ctx context.Context, year int, month time.Month) (map[int][]calendar.Event, error)
	CreateEvent(ctx context.Context, form calendar.EventForm) (*calendar.Event, error)
}

// Providers builds the Google clients for one request's credential.
type Providers interface {
	Mail(ctx context.Context, cred *google.Credential) (MailReader, error)
	Courses(ctx context.Context, cred *google.Credential) (CourseReader, error)
	Calendar(ctx context.Context, cred *google.Credential) (CalendarService, error)
}

// GoogleProviders creates real API clients. Options are appended to every
// client, which is how tests point them at a fake endpoint.
type GoogleProviders struct {
	Options []option.ClientOption
	Logger  *slog.Logger
}

func (p GoogleProviders) Mail(ctx context.Context, cred *google.Credential) (MailReader, error) {
	return gmail.NewClient(ctx, cred.TokenSource(), p.Options...)
}

func (p GoogleProviders) Courses(ctx context.Context, cred *google.Credential) (CourseReader, error) {
	return classroom.NewClient(ctx, cred.TokenSource(), p.Options...)
}

func (p GoogleProviders) Calendar(ctx context.Context, cred *google.Credential) (CalendarService, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return calendar.NewClient(ctx, cred.TokenSource(),
		calendar.WithAPIOptions(p.Options...),
		calendar.WithLogger(logging.WithService(logger, instrumentation.ServiceCalendar)),
	)
}

var (
	_ Authenticator = (*google.Flow)(nil)
	_ Providers     = GoogleProviders{}
)
