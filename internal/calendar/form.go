package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// EventForm is the event creation form posted from the calendar page.
type EventForm struct {
	Title string `form:"titulo" validate:"required,max=1024"`
	Date  string `form:"fecha" validate:"required,datetime=2006-01-02"`
	Time  string `form:"hora" validate:"required,len=5,datetime=15:04"`
}

// ParseEventForm reads the titulo, fecha and hora fields.
func ParseEventForm(values url.Values) EventForm {
	return EventForm{
		Title: strings.TrimSpace(values.Get("titulo")),
		Date:  strings.TrimSpace(values.Get("fecha")),
		Time:  strings.TrimSpace(values.Get("hora")),
	}
}

// Validate checks the form fields. Failures are validator.ValidationErrors.
func (f EventForm) Validate() error {
	return validate.Struct(f)
}

// StartDateTime returns the local start date-time sent to Google.
func (f EventForm) StartDateTime() string {
	return f.Date + "T" + f.Time + ":00"
}

// EndDateTime returns the local end date-time one hour after the start.
func (f EventForm) EndDateTime() (string, error) {
	return EndDateTime(f.Date, f.Time)
}

// EndDateTime adds one to the hour of an HH:MM time and keeps the minutes.
// The hour does not roll over into the next day: 23:30 becomes "24:30",
// which Google rejects. Callers that need rollover must handle it.
func EndDateTime(date, hhmm string) (string, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return "", fmt.Errorf("malformed time %q, want HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(hhmm[:2])
	if err != nil {
		return "", fmt.Errorf("malformed hour in %q: %w", hhmm, err)
	}
	return fmt.Sprintf("%sT%02d:%s:00", date, hour+1, hhmm[3:]), nil
}

var fieldLabels = map[string]string{
	"Title": "título",
	"Date":  "fecha",
	"Time":  "hora",
}

// ErrorMessage turns a Validate failure into the message shown above the
// form.
func ErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Formulario inválido"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = strings.ToLower(fe.Field())
		}
		if fe.Tag() == "required" {
			msgs = append(msgs, "Falta el campo "+label)
		} else {
			msgs = append(msgs, "El campo "+label+" no es válido")
		}
	}
	return strings.Join(msgs, ". ")
}
