// Package calendar provides a client for the user's primary Google Calendar.
//
// The client lists the events of one calendar month, grouped by day of the
// month, and creates one-hour events from the dashboard form. Event times
// are interpreted in the America/Lima time zone.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, cred.TokenSource())
//	if err != nil {
//	    return err
//	}
//
//	byDay, err := client.MonthEvents(ctx, 2024, time.June)
package calendar
