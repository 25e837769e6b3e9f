// Package logging sets up the process slog handler and names the attributes
// tablero's log lines share.
//
// Emails are logged as UserHash and tokens only through SanitizeToken:
//
//	logging.WithService(logger, "gmail").Debug("google api call",
//	    logging.Operation("list"), logging.Status(logging.StatusSuccess))
package logging
