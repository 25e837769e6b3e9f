package gmail

// Mail is the summary of one message shown on the dashboard.
type Mail struct {
	ID      string
	From    string
	Subject string
	// Body is the plain-text body, or the Gmail snippet when no text part
	// could be extracted.
	Body string
}
