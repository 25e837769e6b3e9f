package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DefaultRecentLimit is how many messages the dashboard shows.
const DefaultRecentLimit = 5

// Client wraps the Gmail Users service
type Client struct {
	svc *gmail.UsersService
}

// NewClient creates a Gmail client authorized by ts. Extra options are
// applied after the authorized HTTP client, so callers can redirect the
// endpoint.
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, ts)

	svc, err := gmail.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users}, nil
}

// ListRecent returns the newest limit messages in the order Gmail lists
// them. Each message costs one additional request.
func (c *Client) ListRecent(ctx context.Context, limit int64) ([]Mail, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	resp, err := c.svc.Messages.List("me").MaxResults(limit).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	mails := make([]Mail, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := c.GetMessage(ctx, ref.Id)
		if err != nil {
			return nil, err
		}
		mails = append(mails, toMail(msg))
	}

	return mails, nil
}

// GetMessage retrieves a full Gmail message
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

func toMail(msg *gmail.Message) Mail {
	return Mail{
		ID:      msg.Id,
		From:    HeaderValue(msg, "From"),
		Subject: HeaderValue(msg, "Subject"),
		Body:    MessageBody(msg),
	}
}
