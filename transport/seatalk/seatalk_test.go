package seatalk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
)

func TestBuild_RejectsNonInputDirection(t *testing.T) {
	_, err := Build(config.Interface{Direction: iface.OUT, Options: map[string]string{"device": "/dev/ttyUSB0"}}, config.Global{}, nil)
	assert.Error(t, err)
}

func TestBuild_MissingDeviceErrors(t *testing.T) {
	_, err := Build(config.Interface{Direction: iface.IN, Options: map[string]string{}}, config.Global{}, nil)
	assert.Error(t, err)
}

func TestDecode_WaterTemperatureCommandZero(t *testing.T) {
	sentence, ok := Decode(0x00, 0x02, []byte{0x00, 0xC8})
	assert.True(t, ok)
	assert.Contains(t, sentence, "$DBT,77.2,f,")
}

func TestDecode_WaterTemperatureCommand23(t *testing.T) {
	sentence, ok := Decode(0x23, 0x01, []byte{0x0F})
	assert.True(t, ok)
	assert.Contains(t, sentence, "$MTW,15,C")
}

func TestDecode_TransducerNotFunctionalIsDropped(t *testing.T) {
	_, ok := Decode(0x23, 0x01, []byte{0x40})
	assert.False(t, ok)
}

func TestDecode_UnrecognisedCommandIsDropped(t *testing.T) {
	_, ok := Decode(0x99, 0x00, []byte{0x01})
	assert.False(t, ok)
}

func TestDecode_ChecksumAppended(t *testing.T) {
	sentence, ok := Decode(0x23, 0x01, []byte{0x0F})
	assert.True(t, ok)
	assert.Contains(t, sentence, "*")
}
