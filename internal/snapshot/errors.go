package snapshot

import "codeberg.org/mutker/stackchart/internal/errors"

const (
	ErrNoData     errors.ErrorCode = "snapshot_no_data"
	ErrRender     errors.ErrorCode = "snapshot_render_failed"
	ErrWriteImage errors.ErrorCode = "snapshot_write_failed"
)
