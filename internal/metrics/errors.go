package metrics

import "codeberg.org/mutker/powerhald/internal/errors"

// Journal error codes. Lifecycle failures reuse the shared codes so
// callers can match them without importing this package.
const (
	ErrInvalidConfig   = errors.ErrInvalidConfig
	ErrInvalidPath     = errors.ErrorCode("journal_invalid_path")
	ErrInvalidEvent    = errors.ErrorCode("journal_invalid_event")
	ErrOpen            = errors.ErrInitFailed
	ErrClose           = errors.ErrShutdownFailed
	ErrRecord          = errors.ErrorCode("journal_record_failed")
	ErrRecordCancelled = errors.ErrTimeout
	ErrWriteBatch      = errors.ErrorCode("journal_write_batch_failed")

	ErrSchemaCreate  = errors.ErrorCode("journal_schema_create_failed")
	ErrSchemaRead    = errors.ErrorCode("journal_schema_read_failed")
	ErrSchemaRebuild = errors.ErrorCode("journal_schema_rebuild_failed")
)
