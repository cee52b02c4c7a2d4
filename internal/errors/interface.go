package errors

// ErrorCode is a stable, machine-readable error identifier. Packages
// define their own codes next to their code, prefixed with the package
// name ("sysfs_open_failed", "journal_invalid_event").
type ErrorCode string

// Error is an error carrying a code, an optional cause and optional
// structured data. It is immutable: WithMessage and WithData return
// copies.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	Data() any
	Unwrap() error
}

// Factory builds coded errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
