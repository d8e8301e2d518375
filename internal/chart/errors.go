package chart

import "codeberg.org/mutker/stackchart/internal/errors"

const (
	ErrDragInProgress = errors.ErrDragInProgress
	ErrMissingMetrics = errors.ErrorCode("chart_missing_metrics")
	ErrMissingOption  = errors.ErrorCode("chart_missing_option")
	ErrSettingsWrite  = errors.ErrorCode("chart_settings_write_failed")
)
