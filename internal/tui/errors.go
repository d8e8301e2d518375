package tui

import "codeberg.org/mutker/stackchart/internal/errors"

const (
	ErrProgram errors.ErrorCode = "tui_program_failed"
)
