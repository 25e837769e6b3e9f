package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// Attribute keys shared by the dashboard's log lines.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyStatus    = "status"
	KeyDuration  = "duration"
	KeyRoute     = "route"
	KeyUserHash  = "user_hash"
	KeyError     = "error"
)

// Outcome values for KeyStatus. They match the instrumentation label values
// so logs and metrics can be joined.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation tags every line of the returned logger with the flow step,
// e.g. "oauth_callback".
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithService tags every line with the Google service a client talks to.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Duration is rounded to the millisecond; upstream calls are never faster.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d.Round(time.Millisecond))
}

// Route carries the matched chi pattern, never the raw path.
func Route(pattern string) slog.Attr {
	return slog.String(KeyRoute, pattern)
}

// Err returns an empty attribute for a nil error, which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail hashes an address so sign-ins can be correlated without
// logging who signed in.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// SanitizeToken reports only a token's length.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
