package waterforce

import "codeberg.org/mutker/waterforcectl/internal/errors"

const (
	// Attachment and lifecycle errors
	ErrAttachFailed = errors.ErrorCode("waterforce_attach_failed")
	ErrClosed       = errors.ErrorCode("waterforce_device_closed")

	// Transport errors
	ErrTransportWrite = errors.ErrorCode("waterforce_transport_write_failed")

	// Query errors
	ErrNoData = errors.ErrorCode("waterforce_no_data")

	// Validation errors
	ErrInvalidChannel  = errors.ErrorCode("waterforce_invalid_channel")
	ErrTempOutOfRange  = errors.ErrorCode("waterforce_temperature_out_of_range")
	ErrSpeedOutOfRange = errors.ErrorCode("waterforce_speed_out_of_range")
)
