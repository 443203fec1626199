// internal/scanner/manufacturer.go
package scanner

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
)

// CompanyApple is the Bluetooth SIG company identifier used by iBeacon frames.
const CompanyApple uint16 = 0x004C

// MatchesManufacturer reports whether manufacturer-specific advertisement data
// starts with companyID. The company ID is little-endian on the wire.
func MatchesManufacturer(data []byte, companyID uint16) bool {
	if len(data) < 2 {
		return false
	}
	return binary.LittleEndian.Uint16(data[:2]) == companyID
}

// IBeacon is the decoded payload of an iBeacon advertisement.
type IBeacon struct {
	UUID  string
	Major uint16
	Minor uint16
	Power int8 // calibrated RSSI at 1 m
}

var errNotIBeacon = errors.New("scanner: not an iBeacon frame")

// ParseIBeacon decodes manufacturer data of the form
// 4C 00 02 15 <uuid:16> <major:2> <minor:2> <power:1>.
func ParseIBeacon(data []byte) (IBeacon, error) {
	if len(data) < 25 || binary.BigEndian.Uint32(data) != 0x4c000215 {
		return IBeacon{}, errNotIBeacon
	}
	u := hex.EncodeToString(data[4:20])
	return IBeacon{
		UUID:  strings.ToUpper(u[0:8] + "-" + u[8:12] + "-" + u[12:16] + "-" + u[16:20] + "-" + u[20:32]),
		Major: binary.BigEndian.Uint16(data[20:22]),
		Minor: binary.BigEndian.Uint16(data[22:24]),
		Power: int8(data[24]),
	}, nil
}
