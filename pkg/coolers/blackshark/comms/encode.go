package comms

import (
	"github.com/mlsorensen/goshark/pkg/logging"
	"go.uber.org/zap"
)

// Command opcodes (bytes 1-2 of an outgoing buffer).
const (
	cmdLength   byte = 0x05
	cmdSetLoad  byte = 0x02
	cmdCooling  byte = 0x05
	cmdMetadata byte = 0x06
)

// Load values outside the inverted 0-100 range select firmware modes.
const (
	// LoadOff stops both the fan and the cooling plate. Writing load 100
	// only stops the fan, which leaves the plate running and can overheat.
	LoadOff byte = 0xFB
	// LoadSmart balances cooling against exhaust air temperature.
	LoadSmart byte = 0xFA
)

// LED frame layout.
const (
	LEDFrameLen = 45

	ledModeOff   byte = 0x01
	ledModeColor byte = 0x06
)

var (
	ledHeader = [...]byte{0x2F, 0x01, 0x20, 0x00}
	ledFixed  = [...]byte{0x00, 0xFF, 0xFF, 0xFF, 0x00, 0x01}
)

// BuildTurnCoolingOffCommand creates the command that switches fan and cooling off.
func BuildTurnCoolingOffCommand() []byte {
	return buildLoadCommand(cmdSetLoad, LoadOff)
}

// BuildEnableSmartModeCommand creates the command that enables smart mode.
// Cooling is slower but the exhaust stays comfortable for the hands.
func BuildEnableSmartModeCommand() []byte {
	return buildLoadCommand(cmdSetLoad, LoadSmart)
}

// BuildCoolingMetadataCommand asks the device to publish its temperatures on
// the read endpoint.
func BuildCoolingMetadataCommand() []byte {
	return []byte{cmdLength, cmdMetadata, 0x00, 0x00, 0x00}
}

// BuildSetFanSpeedCommand creates the command that sets the fan load.
// 0% turns the device off rather than writing load 100.
func BuildSetFanSpeedCommand(percentage int) ([]byte, error) {
	load, err := percentageToLoad("fan speed", percentage)
	if err != nil {
		return nil, err
	}
	return buildLoadCommand(cmdSetLoad, load), nil
}

// BuildSetCoolingPowerCommand creates the command that sets the cooling plate power.
func BuildSetCoolingPowerCommand(percentage int) ([]byte, error) {
	load, err := percentageToLoad("cooling power", percentage)
	if err != nil {
		return nil, err
	}
	return buildLoadCommand(cmdCooling, load), nil
}

// BuildSetLEDColorCommand creates the 45 byte command that sets the LED colour.
// Each channel is scaled by brightness and rounded half up, so red 255 at
// brightness 50 is sent as 128.
func BuildSetLEDColorCommand(red, green, blue, brightness int) ([]byte, error) {
	for _, ch := range []struct {
		name  string
		value int
	}{{"red", red}, {"green", green}, {"blue", blue}} {
		if err := checkRange(ch.name, ch.value, 0, 255); err != nil {
			return nil, err
		}
	}
	if err := checkRange("brightness", brightness, 0, 100); err != nil {
		return nil, err
	}

	return buildLEDCommand(ledModeColor,
		scaleChannel(red, brightness),
		scaleChannel(green, brightness),
		scaleChannel(blue, brightness),
	), nil
}

// BuildTurnOffLEDCommand creates the command that switches the LED off.
func BuildTurnOffLEDCommand() []byte {
	return buildLEDCommand(ledModeOff, 0, 0, 0)
}

func buildLoadCommand(opcode, load byte) []byte {
	return []byte{cmdLength, opcode, 0x00, 0x00, load}
}

func buildLEDCommand(mode, r, g, b byte) []byte {
	msg := make([]byte, LEDFrameLen)
	n := copy(msg, ledHeader[:])
	msg[n] = mode
	n++
	n += copy(msg[n:], ledFixed[:])
	msg[n], msg[n+1], msg[n+2] = r, g, b
	// remainder is zero padding
	return msg
}

// percentageToLoad converts a user facing percentage to the inverted load scale.
func percentageToLoad(name string, percentage int) (byte, error) {
	if err := checkRange(name, percentage, 0, 100); err != nil {
		return 0, err
	}
	if percentage == 0 {
		return LoadOff, nil
	}
	return byte(100 - percentage), nil
}

func scaleChannel(channel, brightness int) byte {
	return byte((channel*brightness + 50) / 100)
}

func checkRange(name string, value, lo, hi int) error {
	if value >= lo && value <= hi {
		return nil
	}
	err := &ParameterError{Name: name, Value: value, Min: lo, Max: hi}
	logging.Named("comms").Debug("rejected command parameter",
		zap.String("parameter", name),
		zap.Int("value", value),
		zap.Int("min", lo),
		zap.Int("max", hi),
	)
	return err
}
