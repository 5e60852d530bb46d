// Package logging configures the process-wide structured logger used by the
// adapter layer. It wraps log/slog with level/format selection and a
// redaction hook that masks API-key-shaped values before they reach any
// handler, since provider errors routinely echo request headers back.
package logging
