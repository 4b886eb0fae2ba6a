// Package api provides the HTTP client for the OxPrint backend.
//
// # Overview
//
// Client is the authenticated request dispatcher used by the dashboard. Every
// request goes to the configured base URL (default http://localhost:8080)
// with a JSON Content-Type and, when a credential is stored, an
// "Authorization: Bearer <token>" header. The token is read from the
// TokenSource on each call, so a rotated token applies to the next request.
//
// # Endpoints
//
//   - GET /api/health         → HealthCheckResult
//   - GET /api/system/status  → SystemStatus
//
// # Errors
//
// The client never retries and does not interpret success bodies beyond
// decoding. Failures come back in three shapes:
//
//   - transport errors (DNS, connect, timeout) wrapped as "execute request"
//   - *StatusError for any non-2xx status
//   - errors wrapping ErrMalformedResponse when the body does not decode
//
// Callers classify them with errors.Is and errors.As.
//
// # Data Types
//
// PrinterStatus and Temperature describe devices managed by the backend.
// They are part of the wire contract but no endpoint in this client
// populates them yet.
package api
