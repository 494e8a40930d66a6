// Package comms provides communication details for the Black Shark phone cooler:
// device identification, characteristic identifiers, notification decoding and
// command encoding. Everything here is stateless and safe for concurrent use.
package comms

import (
	"bytes"

	"tinygo.org/x/bluetooth"
)

// Identifier bytes used during discovery and to pick the endpoints to talk to.
const (
	manufacturerID1 byte = 0x8F
	manufacturerID2 byte = 0x03

	readCharID1  byte = 0xA0
	readCharID2  byte = 0x02
	writeCharID1 byte = 0xA0
	writeCharID2 byte = 0x01
)

// ManufacturerCompanyID is the advertised company identifier. BLE sends it
// little-endian, which puts 0x8F 0x03 at the start of the manufacturer data.
const ManufacturerCompanyID uint16 = uint16(manufacturerID2)<<8 | uint16(manufacturerID1)

var (
	ReadCharUUID  = bluetooth.New16BitUUID(uint16(readCharID1)<<8 | uint16(readCharID2))
	WriteCharUUID = bluetooth.New16BitUUID(uint16(writeCharID1)<<8 | uint16(writeCharID2))
)

// ManufacturerDataIdentifier returns the prefix carried by compatible devices.
func ManufacturerDataIdentifier() []byte {
	return []byte{manufacturerID1, manufacturerID2}
}

// MatchesManufacturerData reports whether an advertised manufacturer data
// payload belongs to this device family.
func MatchesManufacturerData(data []byte) bool {
	return len(data) >= 2 && data[0] == manufacturerID1 && data[1] == manufacturerID2
}

// ManufacturerDataBytes rebuilds the raw manufacturer data from the split form
// the bluetooth stack hands out (company id plus the remaining payload).
func ManufacturerDataBytes(companyID uint16, data []byte) []byte {
	raw := make([]byte, 0, 2+len(data))
	raw = append(raw, byte(companyID), byte(companyID>>8))
	return append(raw, data...)
}

// ReadCharacteristicID returns the identifier of the endpoint notifications arrive on.
func ReadCharacteristicID() []byte {
	return []byte{readCharID1, readCharID2}
}

// WriteCharacteristicID returns the identifier of the endpoint commands go to.
func WriteCharacteristicID() []byte {
	return []byte{writeCharID1, writeCharID2}
}

// IsReadCharacteristic reports whether a 16-bit characteristic id is the read endpoint.
func IsReadCharacteristic(id []byte) bool {
	return bytes.Equal(id, []byte{readCharID1, readCharID2})
}

// IsWriteCharacteristic reports whether a 16-bit characteristic id is the write endpoint.
func IsWriteCharacteristic(id []byte) bool {
	return bytes.Equal(id, []byte{writeCharID1, writeCharID2})
}
