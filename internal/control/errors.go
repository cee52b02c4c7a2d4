package control

import "codeberg.org/mutker/powerhald/internal/errors"

const (
	ErrListen         = errors.ErrorCode("control_listen_failed")
	ErrInvalidRequest = errors.ErrorCode("control_invalid_request")
	ErrMissingField   = errors.ErrorCode("control_missing_field")
	ErrUnknownAction  = errors.ErrorCode("control_unknown_action")
	ErrCall           = errors.ErrorCode("control_call_failed")
)
