// Package logging provides structured logging for Mosaic sessions.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent context attributes. Each interactive session gets its own
// session id so that the log of a long-running TUI can be filtered after the
// fact.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer. The
// [RotatingWriter] serializes writes and rotation with a mutex.
//
// # Basic Usage
//
//	logger, err := logging.New("/path/to/state", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	sessionLogger := logger.WithSession(uuid.NewString())
//	aggLogger := sessionLogger.WithComponent("aggregate")
//	aggLogger.Debug("fetch completed", "duration_ms", 812, "entries", 18)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"fetch completed","session_id":"...","component":"aggregate","duration_ms":812,"entries":18}
//
// # Log Rotation
//
// Logs are written to {dir}/mosaic.log. When the file grows past
// MaxSizeMB it is renamed to mosaic.log.1 (older backups shift up) and,
// when Compress is set, gzipped to mosaic.log.1.gz.
//
// # Testing
//
// Use [NopLogger] to discard all log output, or [NewWithWriter] to capture
// it in a buffer.
package logging
