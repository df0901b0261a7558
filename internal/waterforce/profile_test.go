package waterforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectProfile(t *testing.T) {
	tests := []struct {
		name     string
		product  uint16
		firmware int
		wantMax  int
	}{
		{"ex 360 on old firmware", ProductWaterforceEX360, 12, maxSpeedHigh},
		{"ex 360 on unlocked firmware", ProductWaterforceEX360, 14, maxSpeedHigh},
		{"x on unlocked firmware", ProductWaterforceX, 14, maxSpeedHigh},
		{"x on old firmware", ProductWaterforceX, 13, maxSpeedLow},
		{"x 360g on unlocked firmware", ProductWaterforceX360G, 14, maxSpeedHigh},
		{"x 360g on newer firmware", ProductWaterforceX360G, 15, maxSpeedLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := selectProfile(tt.product, tt.firmware)

			assert.Equal(t, tt.wantMax, p.MaxSpeed)
			assert.Equal(t, tt.product, p.Product)
			assert.Equal(t, tt.firmware, p.Firmware)
		})
	}
}

func TestProfileChannels(t *testing.T) {
	p := selectProfile(ProductWaterforceX, 13)

	assert.Equal(t, 1, p.TempChannels())
	assert.Equal(t, 2, p.SpeedChannels())
	assert.Equal(t, []string{"Coolant temp"}, p.TempLabels)
	assert.Equal(t, []string{"Fan speed", "Pump speed"}, p.SpeedLabels)
}
