package waterforce

import "time"

// Transport is one open report channel to an attached cooler. Write sends
// a single output report of ReportLength bytes. Device discovery and the
// delivery of inbound reports belong to the attachment layer, which feeds
// received reports to Device.HandleReport.
type Transport interface {
	Write(p []byte) (int, error)
	Close() error
}

// Speed/duty channel indices.
const (
	ChannelFan  = 0
	ChannelPump = 1
)

// Status is a consistent copy of the cached telemetry snapshot.
type Status struct {
	CoolantTemp int // milli-degrees Celsius
	FanSpeed    int // RPM
	PumpSpeed   int // RPM
	FanDuty     int // percent
	PumpDuty    int // percent
	Updated     time.Time
}
