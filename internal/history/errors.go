package history

import "codeberg.org/mutker/stackchart/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("history_invalid_db_path")

	// Storage Errors
	ErrStorageAccess     = errors.ErrorCode("history_storage_access_failed")
	ErrStorageInit       = errors.ErrInitFailed
	ErrTransactionFailed = errors.ErrorCode("history_transaction_failed")

	// Service Errors
	ErrServiceShutdown = errors.ErrShutdownFailed

	// Collection Errors
	ErrRecordFailed  = errors.ErrorCode("history_record_failed")
	ErrInvalidSample = errors.ErrorCode("history_invalid_sample")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
