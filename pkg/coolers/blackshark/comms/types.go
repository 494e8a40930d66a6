package comms

import "fmt"

// Opcodes of the frames the cooler sends back. The pair sits at bytes 1 and 2
// and names the command the frame answers.
const (
	OpcodeFan1     byte = 0x02
	OpcodeFan2     byte = 0x10
	OpcodeCooling1 byte = 0x06
	OpcodeCooling2 byte = 0x00
)

// Message is a decoded notification. The set of variants is closed:
// CoolingState, FanState and UnknownMessage.
type Message interface {
	// Raw returns the buffer the message was decoded from.
	Raw() []byte
	isMessage()
}

// CoolingState carries the temperatures reported in a cooling status frame.
type CoolingState struct {
	RawData             []byte
	PhoneTemperature    int8 // degrees Celsius
	HeatsinkTemperature int8 // degrees Celsius
}

func (m CoolingState) Raw() []byte { return m.RawData }
func (CoolingState) isMessage()    {}

func (m CoolingState) String() string {
	return fmt.Sprintf("cooling: phone %d°C, heatsink %d°C", m.PhoneTemperature, m.HeatsinkTemperature)
}

// FanState carries the fan speed in percent (0-100).
type FanState struct {
	RawData []byte
	Speed   int
}

func (m FanState) Raw() []byte { return m.RawData }
func (FanState) isMessage()    {}

func (m FanState) String() string {
	return fmt.Sprintf("fan: %d%%", m.Speed)
}

// UnknownMessage is any frame we don't have a parser for, or a recognized
// frame that was too short to read.
type UnknownMessage struct {
	RawData []byte
}

func (m UnknownMessage) Raw() []byte { return m.RawData }
func (UnknownMessage) isMessage()    {}

func (m UnknownMessage) String() string {
	return "unknown: " + Hex(m.RawData)
}

// Hex renders a buffer as space separated lower-case hex pairs, e.g. "05 02 00 00 fb".
func Hex(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}
	return fmt.Sprintf("% x", buf)
}
