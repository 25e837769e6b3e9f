// Package config builds the immutable runtime configuration of tablero.
//
// Values are resolved once at startup from (in increasing precedence)
// built-in defaults, an optional tablero.yaml file, environment variables
// and command-line flags bound by the cmd package. The resulting Config is
// passed explicitly to every component that needs it; nothing reads the
// environment after Load returns.
package config
