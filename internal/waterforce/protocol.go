package waterforce

import "encoding/binary"

// ReportLength is the fixed size of every report exchanged with the cooler.
// Outbound commands are zero-padded to this length.
const ReportLength = 64

// Command tags, the first two bytes of every frame.
var (
	cmdGetStatus   = []byte{0x99, 0xDA}
	cmdGetFirmware = []byte{0x99, 0xD6}
	cmdSetCPUTemp  = []byte{0x99, 0xE0}
	cmdSetSpeed    = []byte{0x99, 0xE6}
)

// Speed channel codes embedded in set-speed frames.
const (
	speedCodeFan  uint16 = 0x0101
	speedCodePump uint16 = 0x0402
)

type byteOrder uint8

const (
	orderSingle byteOrder = iota // one byte, no order
	orderLittle
	orderBig
)

// field describes one value inside a fixed-layout frame.
type field struct {
	offset int
	width  int
	order  byteOrder
}

func (f field) get(frame []byte) int {
	switch f.order {
	case orderLittle:
		return int(binary.LittleEndian.Uint16(frame[f.offset:]))
	case orderBig:
		return int(binary.BigEndian.Uint16(frame[f.offset:]))
	default:
		return int(frame[f.offset])
	}
}

func (f field) put(frame []byte, value int) {
	switch f.order {
	case orderLittle:
		binary.LittleEndian.PutUint16(frame[f.offset:], uint16(value))
	case orderBig:
		binary.BigEndian.PutUint16(frame[f.offset:], uint16(value))
	default:
		frame[f.offset] = byte(value)
	}
}

func (f field) end() int {
	return f.offset + f.width
}

// Status reply layout.
var (
	fieldCoolantTemp = field{offset: 0x0D, width: 1, order: orderSingle}
	fieldFanSpeed    = field{offset: 0x02, width: 2, order: orderLittle}
	fieldPumpSpeed   = field{offset: 0x05, width: 2, order: orderLittle}
	fieldFanDuty     = field{offset: 0x08, width: 1, order: orderSingle}
	fieldPumpDuty    = field{offset: 0x09, width: 1, order: orderSingle}
)

// Firmware reply layout: two digit bytes combined as major*10 + minor.
var (
	fieldFirmwareMajor = field{offset: 2, width: 1, order: orderSingle}
	fieldFirmwareMinor = field{offset: 3, width: 1, order: orderSingle}
)

// Set-command layouts. The protocol repeats the target speed at several
// offsets within one frame; this is preserved as-is for wire compatibility.
var (
	fieldCPUTemp     = field{offset: 3, width: 1, order: orderSingle}
	fieldSpeedCode   = field{offset: 2, width: 2, order: orderBig}
	fieldSpeedTarget = []field{
		{offset: 5, width: 2, order: orderBig},
		{offset: 8, width: 2, order: orderBig},
		{offset: 11, width: 2, order: orderBig},
		{offset: 14, width: 2, order: orderBig},
	}
)

const milliDegreesPerUnit = 1000

type replyKind uint8

const (
	replyUnrecognized replyKind = iota
	replyStatus
	replyFirmware
)

// status holds the values extracted from one status reply.
type status struct {
	coolantTemp int // milli-degrees Celsius
	fanSpeed    int // RPM
	pumpSpeed   int // RPM
	fanDuty     int // percent
	pumpDuty    int // percent
}

// reply is one decoded inbound frame.
type reply struct {
	kind     replyKind
	status   status
	firmware int
}

func tagMatches(frame, cmd []byte) bool {
	return len(frame) >= len(cmd) && frame[0] == cmd[0] && frame[1] == cmd[1]
}

// decodeReply inspects the leading tag bytes and extracts the documented
// fields. Frames with an unknown tag, or too short to carry their layout,
// decode as replyUnrecognized.
func decodeReply(frame []byte) reply {
	switch {
	case tagMatches(frame, cmdGetFirmware):
		if len(frame) < fieldFirmwareMinor.end() {
			return reply{kind: replyUnrecognized}
		}
		return reply{
			kind:     replyFirmware,
			firmware: fieldFirmwareMajor.get(frame)*10 + fieldFirmwareMinor.get(frame),
		}
	case tagMatches(frame, cmdGetStatus):
		if len(frame) < fieldCoolantTemp.end() {
			return reply{kind: replyUnrecognized}
		}
		return reply{
			kind: replyStatus,
			status: status{
				coolantTemp: fieldCoolantTemp.get(frame) * milliDegreesPerUnit,
				fanSpeed:    fieldFanSpeed.get(frame),
				pumpSpeed:   fieldPumpSpeed.get(frame),
				fanDuty:     fieldFanDuty.get(frame),
				pumpDuty:    fieldPumpDuty.get(frame),
			},
		}
	default:
		return reply{kind: replyUnrecognized}
	}
}

// The encode functions fill a zeroed ReportLength buffer; parameter
// validation is the caller's responsibility.

func encodeStatusRequest(frame []byte) {
	copy(frame, cmdGetStatus)
}

func encodeFirmwareRequest(frame []byte) {
	copy(frame, cmdGetFirmware)
}

func encodeSetCPUTemp(frame []byte, temp int) {
	copy(frame, cmdSetCPUTemp)
	fieldCPUTemp.put(frame, temp)
}

func encodeSetSpeed(frame []byte, code uint16, rpm int) {
	copy(frame, cmdSetSpeed)
	fieldSpeedCode.put(frame, int(code))
	for _, f := range fieldSpeedTarget {
		f.put(frame, rpm)
	}
}
