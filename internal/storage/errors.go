package storage

import "codeberg.org/mutker/stackchart/internal/errors"

const (
	ErrInvalidDBPath          = errors.ErrorCode("storage_invalid_db_path")
	ErrStorageInit            = errors.ErrInitFailed
	ErrStorageClose           = errors.ErrShutdownFailed
	ErrSchemaInitFailed       = errors.ErrorCode("storage_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("storage_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("storage_schema_migration_failed")
)
