package view

import (
	"time"

	"github.com/teemow/tablero/internal/calendar"
	"github.com/teemow/tablero/internal/classroom"
	"github.com/teemow/tablero/internal/gmail"
)

// Page names accepted by Renderer.Render.
const (
	PageIndex    = "index"
	PageAccount  = "cuentas"
	PageMail     = "correos"
	PageCourses  = "classroom"
	PageCalendar = "calendario"
)

// IndexPage is the landing page.
type IndexPage struct {
	LoggedIn bool
	Email    string
}

// AccountPage shows the signed-in account.
type AccountPage struct {
	Email string
}

// MailPage lists recent messages in provider order.
type MailPage struct {
	Mails []gmail.Mail
}

// CoursePage lists the newest posts of each course.
type CoursePage struct {
	PostsByCourse map[string][]classroom.Post
}

// CalendarPage shows one month with its events.
type CalendarPage struct {
	Year        int
	Month       time.Month
	Weeks       [][7]int
	EventsByDay map[int][]calendar.Event
	Form        calendar.EventForm
	FormError   string
}
