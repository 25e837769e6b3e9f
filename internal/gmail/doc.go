// Package gmail provides a read-only client for the Gmail API.
//
// The client lists the user's most recent messages and reduces each one to a
// Mail record: sender, subject and a plain-text body. The body comes from the
// first text/plain MIME part; messages without MIME parts fall back to the
// snippet Gmail computes, and HTML-only messages are stripped to text.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, cred.TokenSource())
//	if err != nil {
//	    return err
//	}
//
//	mails, err := client.ListRecent(ctx, gmail.DefaultRecentLimit)
package gmail
