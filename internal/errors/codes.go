package errors

const (
	// Generic
	ErrInternal         ErrorCode = "internal_error"
	ErrInvalidArgument  ErrorCode = "invalid_argument"
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrResourceNotFound ErrorCode = "resource_not_found"

	// Daemon lifecycle
	ErrAlreadyRunning ErrorCode = "already_running"
	ErrPIDFile        ErrorCode = "pid_file_failed"
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrServe          ErrorCode = "serve_failed"
	ErrInitMetrics    ErrorCode = "init_metrics_failed"

	// Configuration
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrWatchConfig     ErrorCode = "watch_config_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
)

var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
	ErrResourceNotFound: "Resource not found",
	ErrAlreadyRunning:   "Another instance is already running",
	ErrPIDFile:          "Failed to manage PID file",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrServe:            "Control socket stopped with an error",
	ErrInitMetrics:      "Failed to open transition journal",
	ErrInvalidConfig:    "Invalid configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read config file",
	ErrWatchConfig:      "Failed to watch config file",
	ErrInvalidLogLevel:  "Invalid log level",
}

// GetErrorMessage returns the human-readable message for code, or the
// code itself for package-local codes without an entry.
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
