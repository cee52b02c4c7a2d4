package power

import "codeberg.org/mutker/powerhald/internal/errors"

const (
	ErrInvalidProfile = errors.ErrorCode("power_invalid_profile")
	ErrInvalidHint    = errors.ErrorCode("power_invalid_hint")
	ErrInvalidFeature = errors.ErrorCode("power_invalid_feature")
)
