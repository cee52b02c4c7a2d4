package sysfs

import "codeberg.org/mutker/powerhald/internal/errors"

const (
	ErrOpenFailed  = errors.ErrorCode("sysfs_open_failed")
	ErrReadFailed  = errors.ErrorCode("sysfs_read_failed")
	ErrWriteFailed = errors.ErrorCode("sysfs_write_failed")
	ErrPathUnset   = errors.ErrorCode("sysfs_path_unset")
)
