package settings

import "codeberg.org/mutker/stackchart/internal/errors"

const (
	ErrInvalidConfig = errors.ErrorCode("settings_invalid_config")
	ErrInvalidKey    = errors.ErrorCode("settings_invalid_key")
	ErrStorageAccess = errors.ErrorCode("settings_storage_access_failed")
	ErrStorageInit   = errors.ErrorCode("settings_storage_init_failed")
	ErrStorageClose  = errors.ErrorCode("settings_storage_close_failed")
)
