// Package cmd implements the tablero command line.
//
// Commands:
//   - serve: run the dashboard web server (default when no subcommand is given)
//   - logout: delete the stored Google credential
//   - version: print the build version
package cmd
