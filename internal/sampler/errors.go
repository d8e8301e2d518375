package sampler

import "codeberg.org/mutker/stackchart/internal/errors"

const (
	ErrInvalidSource = errors.ErrInvalidSource
	ErrReadFailed    = errors.ErrorCode("sampler_read_failed")
	ErrAppendFailed  = errors.ErrorCode("sampler_append_failed")
	ErrTooManyErrors = errors.ErrorCode("sampler_too_many_errors")
)
