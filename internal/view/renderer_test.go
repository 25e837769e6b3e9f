package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tablero/internal/calendar"
	"github.com/teemow/tablero/internal/classroom"
	"github.com/teemow/tablero/internal/gmail"
)

func newRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	return r
}

func TestRender_Index(t *testing.T) {
	r := newRenderer(t)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, PageIndex, IndexPage{}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `href="/login"`)

	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, PageIndex, IndexPage{LoggedIn: true, Email: "ana@example.com"}))
	assert.Contains(t, rec.Body.String(), "ana@example.com")
}

func TestRender_MailEscapesContent(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	data := MailPage{Mails: []gmail.Mail{
		{ID: "1", From: "a@example.com", Subject: "<script>alert(1)</script>", Body: "hola"},
		{ID: "2", From: "b@example.com", Subject: "Segundo", Body: "chau"},
	}}
	require.NoError(t, r.Render(rec, http.StatusOK, PageMail, data))

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Less(t, strings.Index(body, "a@example.com"), strings.Index(body, "b@example.com"))
}

func TestRender_Courses(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	data := CoursePage{PostsByCourse: map[string][]classroom.Post{
		"Historia": {{Title: "Ensayo", Kind: classroom.KindAssignment, UpdateTime: "2024-06-01T10:00:00Z"}},
	}}
	require.NoError(t, r.Render(rec, http.StatusOK, PageCourses, data))
	assert.Contains(t, rec.Body.String(), "Historia")
	assert.Contains(t, rec.Body.String(), "Tarea")
	assert.Contains(t, rec.Body.String(), "Ensayo")
}

func TestRender_Calendar(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	data := CalendarPage{
		Year:  2024,
		Month: time.June,
		Weeks: MonthGrid(2024, time.June),
		EventsByDay: map[int][]calendar.Event{
			20: {{Summary: "Examen", Start: "2024-06-20T09:00:00-05:00", Day: 20}},
		},
		Form:      calendar.EventForm{Title: "Borrador"},
		FormError: "la fecha es obligatoria",
	}
	require.NoError(t, r.Render(rec, http.StatusBadRequest, PageCalendar, data))

	body := rec.Body.String()
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body, "junio 2024")
	assert.Contains(t, body, "09:00 Examen")
	assert.Contains(t, body, `value="Borrador"`)
	assert.Contains(t, body, "la fecha es obligatoria")
}

func TestRender_UnknownPage(t *testing.T) {
	r := newRenderer(t)
	rec := httptest.NewRecorder()

	err := r.Render(rec, http.StatusOK, "nope", nil)
	require.Error(t, err)
	assert.Equal(t, 0, rec.Body.Len())
}
