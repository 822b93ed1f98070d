// Package logging provides structured logging utilities for the observability
// stack renderer and its HTTP service.
//
// It wraps the standard library slog package with JSON output to stderr,
// LOG_LEVEL based level selection, module/version attributes, and source
// location on debug logs.
//
// Setting the default logger:
//
//	func main() {
//	    logging.SetDefaultStructuredLoggerWithLevel("obsctl", version, "info")
//	    slog.Info("rendering", "components", 2)
//	}
//
// Supported levels (case-insensitive): debug, info, warn/warning, error.
// Unknown values fall back to info.
package logging
