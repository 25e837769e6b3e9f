// Package classroom provides a read-only client for the Google Classroom API.
//
// For every course the user is enrolled in, the client collects
// announcements, coursework assignments and coursework materials, maps them
// to Post records and keeps the five most recently updated per course.
package classroom
