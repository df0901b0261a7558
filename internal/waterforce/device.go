package waterforce

import (
	"sync"
	"time"

	"codeberg.org/mutker/waterforcectl/internal/errors"
	"codeberg.org/mutker/waterforcectl/internal/logger"
)

const (
	// statusValidity is how long a decoded snapshot stays fresh. It also
	// bounds the wait for a correlated reply.
	statusValidity = 2 * time.Second

	eventQueueLen = 8

	maxCPUTemp = 0xFF
)

// Device is the command/response engine for one attached cooler. Reads are
// served from a cached snapshot and trigger a status query once the cache
// goes stale; writes are validated against the device profile and sent
// fire-and-forget.
type Device struct {
	transport Transport
	product   uint16
	profile   Profile

	// Single shared encode buffer; bufferMu guarantees at most one
	// outbound write in flight.
	buffer   []byte
	bufferMu sync.Mutex

	queries      *correlator
	queryTimeout time.Duration
	validity     time.Duration

	mu       sync.RWMutex // guards snapshot, updated, firmware
	snapshot status
	updated  time.Time
	firmware int

	events    chan reply
	done      chan struct{}
	closeOnce sync.Once

	badFrameOnce sync.Once
}

// NewDevice wraps an open transport. The returned device serves reads and
// writes once Init has completed the attachment exchange.
func NewDevice(transport Transport, product uint16) *Device {
	d := &Device{
		transport:    transport,
		product:      product,
		profile:      selectProfile(product, 0),
		buffer:       make([]byte, ReportLength),
		queries:      newCorrelator(),
		queryTimeout: statusValidity,
		validity:     statusValidity,
		events:       make(chan reply, eventQueueLen),
		done:         make(chan struct{}),
	}

	// Start with the snapshot already stale so the first read refreshes
	// without a special case.
	d.updated = time.Now().Add(-statusValidity)

	go d.run()

	return d
}

// Init performs the attachment-time exchange: it queries the firmware
// version and selects the device profile from (product, firmware). Must
// complete before concurrent readers and writers are let loose on the
// device; the profile is immutable afterwards.
func (d *Device) Init() error {
	errFactory := errors.New()

	if err := d.query(queryFirmware, encodeFirmwareRequest); err != nil {
		return errFactory.Wrap(ErrAttachFailed, err)
	}

	d.mu.RLock()
	firmware := d.firmware
	d.mu.RUnlock()

	d.profile = selectProfile(d.product, firmware)
	logger.Debug().
		Int("firmware", firmware).
		Int("max_speed", d.profile.MaxSpeed).
		Msg("Cooler attached")

	return nil
}

// Close stops the processing loop, wakes any pending waiters and closes
// the transport.
func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.done)
		err = d.transport.Close()
	})

	return err
}

// HandleReport accepts one inbound report from the transport delivery
// path. The frame is decoded and queued for the device's own processing
// loop; delivery never blocks. Unrecognized frames are dropped with a
// one-time diagnostic, leaving any pending query to time out normally.
func (d *Device) HandleReport(frame []byte) {
	rep := decodeReply(frame)
	if rep.kind == replyUnrecognized {
		d.badFrameOnce.Do(func() {
			logger.Warn().Msg("Unrecognized report received; firmware or device is possibly damaged")
		})
		return
	}

	select {
	case d.events <- rep:
	case <-d.done:
	default:
		logger.Debug().Msg("Event queue full; dropping report")
	}
}

// run consumes decoded inbound events. It is the only writer of the
// snapshot and firmware fields, and always updates values together with
// their timestamp before firing the completion signal, so a waiter that
// observes completion sees a consistent pair.
func (d *Device) run() {
	for {
		select {
		case <-d.done:
			return
		case rep := <-d.events:
			switch rep.kind {
			case replyStatus:
				d.mu.Lock()
				d.snapshot = rep.status
				d.updated = time.Now()
				d.mu.Unlock()
				d.queries.complete(queryStatus)
			case replyFirmware:
				d.mu.Lock()
				d.firmware = rep.firmware
				d.mu.Unlock()
				d.queries.complete(queryFirmware)
			}
		}
	}
}

// send serializes all outbound traffic through the single shared report
// buffer: zero it, let encode fill in the command, write one report.
// Transport errors propagate verbatim via the wrapped error; there is no
// retry here.
func (d *Device) send(encode func([]byte)) error {
	errFactory := errors.New()

	d.bufferMu.Lock()
	defer d.bufferMu.Unlock()

	for i := range d.buffer {
		d.buffer[i] = 0
	}
	encode(d.buffer)

	if _, err := d.transport.Write(d.buffer); err != nil {
		return errFactory.Wrap(ErrTransportWrite, err)
	}

	return nil
}

// query issues one correlated request and waits for its reply.
func (d *Device) query(kind queryKind, encode func([]byte)) error {
	d.queries.lock(kind)
	defer d.queries.unlock(kind)

	return d.exchange(kind, encode)
}

func (d *Device) exchange(kind queryKind, encode func([]byte)) error {
	errFactory := errors.New()

	ch := d.queries.arm(kind)
	if err := d.send(encode); err != nil {
		return err
	}

	timer := time.NewTimer(d.queryTimeout)
	defer timer.Stop()

	select {
	case <-ch:
		return nil
	case <-timer.C:
		return errFactory.New(ErrNoData)
	case <-d.done:
		return errFactory.New(ErrClosed)
	}
}

func (d *Device) fresh() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return time.Since(d.updated) < d.validity
}

// refresh drives a status query when the snapshot has gone stale.
// Concurrent readers racing past an expired timestamp serialize on the
// status gate; the freshness re-check after taking it dedupes their
// refreshes to a single device round trip.
func (d *Device) refresh() error {
	if d.fresh() {
		return nil
	}

	d.queries.lock(queryStatus)
	defer d.queries.unlock(queryStatus)

	if d.fresh() {
		return nil
	}

	return d.exchange(queryStatus, encodeStatusRequest)
}

// Status refreshes the snapshot if needed and returns a consistent copy.
func (d *Device) Status() (Status, error) {
	if err := d.refresh(); err != nil {
		return Status{}, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	return Status{
		CoolantTemp: d.snapshot.coolantTemp,
		FanSpeed:    d.snapshot.fanSpeed,
		PumpSpeed:   d.snapshot.pumpSpeed,
		FanDuty:     d.snapshot.fanDuty,
		PumpDuty:    d.snapshot.pumpDuty,
		Updated:     d.updated,
	}, nil
}

// Temperature returns the coolant temperature in milli-degrees Celsius.
func (d *Device) Temperature(channel int) (int, error) {
	errFactory := errors.New()

	if channel < 0 || channel >= d.profile.TempChannels() {
		return 0, errFactory.WithData(ErrInvalidChannel, channel)
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.snapshot.coolantTemp, nil
}

// Speed returns the fan or pump speed in RPM.
func (d *Device) Speed(channel int) (int, error) {
	errFactory := errors.New()

	if channel < 0 || channel >= d.profile.SpeedChannels() {
		return 0, errFactory.WithData(ErrInvalidChannel, channel)
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if channel == ChannelPump {
		return d.snapshot.pumpSpeed, nil
	}

	return d.snapshot.fanSpeed, nil
}

// Duty returns the fan or pump duty in percent.
func (d *Device) Duty(channel int) (int, error) {
	errFactory := errors.New()

	if channel < 0 || channel >= d.profile.SpeedChannels() {
		return 0, errFactory.WithData(ErrInvalidChannel, channel)
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if channel == ChannelPump {
		return d.snapshot.pumpDuty, nil
	}

	return d.snapshot.fanDuty, nil
}

// DutyRaw returns the duty rescaled from percent to the 0-255 range used
// by PWM consumers, rounded to nearest.
func (d *Device) DutyRaw(channel int) (int, error) {
	duty, err := d.Duty(channel)
	if err != nil {
		return 0, err
	}

	return (duty*255 + 50) / 100, nil
}

// TempLabel returns the label of a temperature channel.
func (d *Device) TempLabel(channel int) (string, error) {
	errFactory := errors.New()

	if channel < 0 || channel >= d.profile.TempChannels() {
		return "", errFactory.WithData(ErrInvalidChannel, channel)
	}

	return d.profile.TempLabels[channel], nil
}

// SpeedLabel returns the label of a fan-family channel.
func (d *Device) SpeedLabel(channel int) (string, error) {
	errFactory := errors.New()

	if channel < 0 || channel >= d.profile.SpeedChannels() {
		return "", errFactory.WithData(ErrInvalidChannel, channel)
	}

	return d.profile.SpeedLabels[channel], nil
}

// FirmwareVersion returns the firmware version cached at attachment.
func (d *Device) FirmwareVersion() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.firmware
}

// Profile returns the calibration selected at attachment.
func (d *Device) Profile() Profile {
	return d.profile
}

// SetTargetTemperature reports a CPU temperature for the cooler to act on.
// Out-of-range values are rejected before any device traffic.
func (d *Device) SetTargetTemperature(temp int) error {
	errFactory := errors.New()

	if temp < 0 || temp > maxCPUTemp {
		return errFactory.WithData(ErrTempOutOfRange, temp)
	}

	return d.send(func(frame []byte) {
		encodeSetCPUTemp(frame, temp)
	})
}

// SetTargetSpeed sets a fixed fan or pump speed in RPM, validated against
// the profile's controllable range. Fire-and-forget: no reply is awaited.
func (d *Device) SetTargetSpeed(channel, rpm int) error {
	errFactory := errors.New()

	var code uint16
	switch channel {
	case ChannelFan:
		code = speedCodeFan
	case ChannelPump:
		code = speedCodePump
	default:
		return errFactory.WithData(ErrInvalidChannel, channel)
	}

	if rpm < MinSpeed || rpm > d.profile.MaxSpeed {
		return errFactory.WithData(ErrSpeedOutOfRange, rpm)
	}

	return d.send(func(frame []byte) {
		encodeSetSpeed(frame, code, rpm)
	})
}
