package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot is one recorded cooler state
type Snapshot struct {
	Timestamp       time.Time
	CoolantTemp     int // milli-degrees Celsius
	FanSpeed        int // RPM
	PumpSpeed       int // RPM
	FanDuty         int // percent
	PumpDuty        int // percent
	FirmwareVersion int
}
