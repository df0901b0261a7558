package hidraw

import "codeberg.org/mutker/waterforcectl/internal/errors"

const (
	ErrEnumerationFailed = errors.ErrorCode("hidraw_enumeration_failed")
	ErrOpenFailed        = errors.ErrorCode("hidraw_open_failed")
	ErrDeviceNotFound    = errors.ErrorCode("hidraw_device_not_found")
)
