package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar service
type Client struct {
	svc    *calendar.Service
	logger *slog.Logger
}

type clientConfig struct {
	apiOptions []option.ClientOption
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

// WithAPIOptions appends options to the underlying API service, e.g. a test
// endpoint.
func WithAPIOptions(opts ...option.ClientOption) Option {
	return func(c *clientConfig) {
		c.apiOptions = append(c.apiOptions, opts...)
	}
}

// WithLogger sets the logger used for skipped events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Calendar client authorized by ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	cfg := clientConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := oauth2.NewClient(ctx, ts)
	apiOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, cfg.apiOptions...)

	svc, err := calendar.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, logger: cfg.logger}, nil
}

// MonthWindow returns the first instant of the month and of the following
// month, in UTC.
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ListEvents lists single, start-ordered events of the primary calendar
// within a time range.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	events, err := c.svc.Events.List(PrimaryCalendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]Event, 0, len(events.Items))
	for _, item := range events.Items {
		e, err := toEvent(item)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping event without a usable start date",
				slog.String("event_id", item.Id),
				slog.String("error", err.Error()),
			)
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// MonthEvents returns the month's events keyed by day of the month.
func (c *Client) MonthEvents(ctx context.Context, year int, month time.Month) (map[int][]Event, error) {
	start, end := MonthWindow(year, month)

	events, err := c.ListEvents(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return GroupByDay(events), nil
}

// GroupByDay buckets events by their Day field, keeping list order.
func GroupByDay(events []Event) map[int][]Event {
	byDay := make(map[int][]Event)
	for _, e := range events {
		byDay[e.Day] = append(byDay[e.Day], e)
	}
	return byDay
}

// CreateEvent inserts a one-hour event built from the form into the primary
// calendar. The form is expected to be valid.
func (c *Client) CreateEvent(ctx context.Context, form EventForm) (*Event, error) {
	end, err := form.EndDateTime()
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary: form.Title,
		Start: &calendar.EventDateTime{
			DateTime: form.StartDateTime(),
			TimeZone: EventTimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: end,
			TimeZone: EventTimeZone,
		},
	}

	created, err := c.svc.Events.Insert(PrimaryCalendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	e, err := toEvent(created)
	if err != nil {
		return nil, fmt.Errorf("created event has no usable start: %w", err)
	}
	return &e, nil
}
