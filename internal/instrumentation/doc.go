// Package instrumentation wires OpenTelemetry metrics and tracing for the
// tablero dashboard.
//
// Metrics:
//   - http_requests_total, http_request_duration_seconds by method, route and status
//   - active_sessions
//   - google_api_operations_total, google_api_operation_duration_seconds by
//     service (gmail, classroom, calendar, oauth), operation and status
//   - oauth_auth_total by result
//
// Google API calls made through Observe get a client span named
// google.<service>.<operation>.
//
// Exporters are chosen by Config, which cmd fills from the tablero
// configuration (METRICS_EXPORTER, TRACING_EXPORTER, OTEL_* keys, flags or
// tablero.yaml).
package instrumentation
