package telemetry

import "codeberg.org/mutker/waterforcectl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")

	// Collection Errors
	ErrInvalidSnapshot  = errors.ErrorCode("telemetry_invalid_snapshot")
	ErrSnapshotDiscard  = errors.ErrorCode("telemetry_snapshot_discarded")
	ErrOperationTimeout = errors.ErrorCode("telemetry_operation_timeout")

	// Storage Errors
	ErrStorageAccess = errors.ErrorCode("telemetry_storage_access_failed")
	ErrStorageInit   = errors.ErrorCode("telemetry_storage_init_failed")
	ErrStorageClose  = errors.ErrorCode("telemetry_storage_close_failed")
	ErrSchemaInit    = errors.ErrorCode("telemetry_schema_init_failed")

	// Lifecycle Errors
	ErrServiceShutdown = errors.ErrorCode("telemetry_service_shutdown_failed")
)
