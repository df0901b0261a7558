// Package hidraw opens Linux hidraw nodes by USB identity and exposes raw
// report I/O over them.
package hidraw

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/waterforcectl/internal/errors"
	"codeberg.org/mutker/waterforcectl/internal/logger"
)

const sysClassHidraw = "/sys/class/hidraw"

// Device is one open hidraw node. Write sends an output report, Read
// blocks until the device delivers an input report.
type Device struct {
	file *os.File
	path string
}

// Open opens the first hidraw node backed by a HID device with the given
// vendor and product ID.
func Open(vendor, product uint16) (*Device, error) {
	errFactory := errors.New()

	entries, err := os.ReadDir(sysClassHidraw)
	if err != nil {
		return nil, errFactory.Wrap(ErrEnumerationFailed, err)
	}

	for _, entry := range entries {
		uevent := filepath.Join(sysClassHidraw, entry.Name(), "device", "uevent")
		vid, pid, ok := parseUevent(uevent)
		if !ok || vid != uint32(vendor) || pid != uint32(product) {
			continue
		}

		path := filepath.Join("/dev", entry.Name())
		file, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return nil, errFactory.Wrap(ErrOpenFailed, err)
		}

		logger.Debug().Str("path", path).Msg("Opened hidraw device")

		return &Device{file: file, path: path}, nil
	}

	return nil, errFactory.WithData(ErrDeviceNotFound, fmt.Sprintf("%04x:%04x", vendor, product))
}

// parseUevent extracts the vendor and product ID from a hidraw uevent
// file. The HID_ID line has the form BUS:VENDOR:PRODUCT with eight hex
// digits per field.
func parseUevent(path string) (vendor, product uint32, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, false
	}

	for _, line := range strings.Split(string(data), "\n") {
		value, found := strings.CutPrefix(line, "HID_ID=")
		if !found {
			continue
		}

		var bus uint32
		if _, err := fmt.Sscanf(value, "%x:%x:%x", &bus, &vendor, &product); err != nil {
			return 0, 0, false
		}

		return vendor, product, true
	}

	return 0, 0, false
}

func (d *Device) Write(p []byte) (int, error) {
	return d.file.Write(p)
}

func (d *Device) Read(p []byte) (int, error) {
	return d.file.Read(p)
}

func (d *Device) Close() error {
	return d.file.Close()
}

// Path returns the device node path.
func (d *Device) Path() string {
	return d.path
}
