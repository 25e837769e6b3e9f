// Package server serves the dashboard over HTTP.
//
// Routes are mounted on a chi router. Every page under the protected group
// loads the stored Google credential first and redirects to /login when
// there is none. Browser sessions are kept in memory and keyed by a cookie;
// they hold the OAuth state and the signed-in email only. The credential
// itself lives in the google.CredentialStore.
//
// Prometheus metrics are served on a separate listener by MetricsServer.
package server
