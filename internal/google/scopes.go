package google

// DefaultOAuthScopes are the Google OAuth scopes requested at login.
//
// The scopes provide access to:
//   - OpenID: the signed-in user's email address
//   - Classroom: courses, announcements, own coursework and materials (read-only)
//   - Calendar: read events and create new ones
//   - Gmail: read-only
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Classroom scopes
	"https://www.googleapis.com/auth/classroom.courses.readonly",
	"https://www.googleapis.com/auth/classroom.announcements.readonly",
	"https://www.googleapis.com/auth/classroom.coursework.me.readonly",
	"https://www.googleapis.com/auth/classroom.courseworkmaterials.readonly",

	// Calendar scopes
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events",

	// Gmail scope
	"https://www.googleapis.com/auth/gmail.readonly",
}
