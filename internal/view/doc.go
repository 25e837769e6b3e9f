// Package view renders the dashboard pages.
//
// Pages are html/template files embedded in the binary. Each page defines a
// "content" block that is executed inside the shared layout. The package
// also builds the Monday-first month grid used by the calendar page.
package view
