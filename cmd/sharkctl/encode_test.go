package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlsorensen/goshark/pkg/config"
	"github.com/mlsorensen/goshark/pkg/coolers/blackshark/comms"
)

func TestEncodeCommand(t *testing.T) {
	cfg = &config.Config{LED: config.LEDConfig{Brightness: 50}}

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"off", nil, "05 02 00 00 fb", false},
		{"smart", nil, "05 02 00 00 fa", false},
		{"metadata", nil, "05 06 00 00 00", false},
		{"fan", []string{"30"}, "05 02 00 00 46", false},
		{"cooling", []string{"0"}, "05 05 00 00 fb", false},
		{"fan", []string{"101"}, "", true},
		{"fan", nil, "", true},
		{"fan", []string{"abc"}, "", true},
		{"off", []string{"1"}, "", true},
		{"led", []string{"1", "2"}, "", true},
		{"bogus", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := encodeCommand(tt.name, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, comms.Hex(buf))
		})
	}
}

func TestEncodeLEDUsesConfiguredBrightness(t *testing.T) {
	cfg = &config.Config{LED: config.LEDConfig{Brightness: 50}}

	buf, err := encodeCommand("led", []string{"255", "0", "0"})
	require.NoError(t, err)
	require.Len(t, buf, comms.LEDFrameLen)
	assert.Equal(t, byte(128), buf[11])

	buf, err = encodeCommand("led", []string{"255", "0", "0", "100"})
	require.NoError(t, err)
	assert.Equal(t, byte(255), buf[11])

	_, err = encodeCommand("led", []string{"256", "0", "0", "100"})
	assert.ErrorIs(t, err, comms.ErrInvalidParameter)
}
