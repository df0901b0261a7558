package waterforce

// USB identity of the supported coolers.
const (
	VendorGigabyte uint16 = 0x1044

	ProductWaterforceX     uint16 = 0x7a4d // AORUS WATERFORCE X (240, 280, 360)
	ProductWaterforceX360G uint16 = 0x7a52 // AORUS WATERFORCE X 360G
	ProductWaterforceEX360 uint16 = 0x7a53 // AORUS WATERFORCE EX 360
)

// Controllable speed range in RPM. The ceiling depends on the model and
// firmware: the EX 360 always controls up to the higher tier, other models
// only on the tier-unlocked firmware.
const (
	MinSpeed = 750

	maxSpeedLow  = 2700
	maxSpeedHigh = 3200

	tierUnlockedFirmware = 14
)

var (
	tempLabels  = []string{"Coolant temp"}
	speedLabels = []string{"Fan speed", "Pump speed"}
)

// Profile holds per-model calibration selected once at attachment.
type Profile struct {
	Product     uint16
	Firmware    int
	MaxSpeed    int
	TempLabels  []string
	SpeedLabels []string
}

// TempChannels returns the number of temperature channels.
func (p Profile) TempChannels() int {
	return len(p.TempLabels)
}

// SpeedChannels returns the number of fan-family channels.
func (p Profile) SpeedChannels() int {
	return len(p.SpeedLabels)
}

// profileRule matches a (product, firmware) pair. A zero product matches
// any model, a nil firmware predicate matches any version. Rules are
// evaluated in order and the first match wins, so adding a model is a data
// change here rather than a new branch.
type profileRule struct {
	product  uint16
	firmware func(version int) bool
	maxSpeed int
}

var profileRules = []profileRule{
	{product: ProductWaterforceEX360, maxSpeed: maxSpeedHigh},
	{firmware: func(version int) bool { return version == tierUnlockedFirmware }, maxSpeed: maxSpeedHigh},
	{maxSpeed: maxSpeedLow},
}

func (r profileRule) matches(product uint16, firmware int) bool {
	if r.product != 0 && r.product != product {
		return false
	}
	if r.firmware != nil && !r.firmware(firmware) {
		return false
	}

	return true
}

// selectProfile picks the calibration for the given product and firmware
// version. The final catch-all rule guarantees a match.
func selectProfile(product uint16, firmware int) Profile {
	profile := Profile{
		Product:     product,
		Firmware:    firmware,
		TempLabels:  tempLabels,
		SpeedLabels: speedLabels,
	}

	for _, rule := range profileRules {
		if rule.matches(product, firmware) {
			profile.MaxSpeed = rule.maxSpeed
			break
		}
	}

	return profile
}
