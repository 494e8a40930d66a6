package comms

import "bytes"

// Minimum frame lengths for the fields each recognized frame is read from.
const (
	fanFrameMinLen     = 5 // speed at byte 4
	coolingFrameMinLen = 8 // phone at byte 5, heatsink at byte 7
)

// DecodeNotification turns a raw notification into a Message.
//
// Frame layout: byte 0 packs a type and length nibble, bytes 1-2 are the opcode
// the frame answers, byte 3 is a 0x00 spacer, the rest is opcode specific.
// Frames that match an opcode but are too short to hold its fields come back
// as UnknownMessage. The returned message owns a copy of data.
func DecodeNotification(data []byte) Message {
	raw := bytes.Clone(data)
	if raw == nil {
		raw = []byte{}
	}

	if len(raw) < 3 {
		return UnknownMessage{RawData: raw}
	}

	switch {
	case raw[1] == OpcodeFan1 && raw[2] == OpcodeFan2:
		if len(raw) < fanFrameMinLen {
			return UnknownMessage{RawData: raw}
		}
		return decodeFan(raw)

	case raw[1] == OpcodeCooling1 && raw[2] == OpcodeCooling2:
		if len(raw) < coolingFrameMinLen {
			return UnknownMessage{RawData: raw}
		}
		return decodeCooling(raw)

	default:
		return UnknownMessage{RawData: raw}
	}
}

// decodeFan reads the load value at byte 4. The device reports load inverted,
// so 0 is full speed and 100 is stopped.
func decodeFan(frame []byte) FanState {
	speed := 100 - int(frame[4])
	speed = max(0, min(100, speed))
	return FanState{RawData: frame, Speed: speed}
}

// decodeCooling reads two signed temperatures.
//
// Older firmware was documented with a single temperature at byte 4; that
// layout is not supported here.
func decodeCooling(frame []byte) CoolingState {
	return CoolingState{
		RawData:             frame,
		PhoneTemperature:    int8(frame[5]),
		HeatsinkTemperature: int8(frame[7]),
	}
}
