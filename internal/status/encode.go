// internal/status/encode.go
package status

import "encoding/json"

// Payload is the JSON wire form shared by the broadcast and remote sinks.
type Payload struct {
	DeviceAddresses []string `json:"deviceAddresses"`
}

// EncodeJSON renders the snapshot as {"deviceAddresses": [...]}.
// An empty window encodes as an empty array, never null.
func EncodeJSON(s Snapshot) ([]byte, error) {
	addrs := s.Addresses
	if addrs == nil {
		addrs = []string{}
	}
	return json.Marshal(Payload{DeviceAddresses: addrs})
}

// DecodeJSON parses the wire form.
func DecodeJSON(b []byte) (Payload, error) {
	var p Payload
	err := json.Unmarshal(b, &p)
	return p, err
}

// Encode converts a Snapshot into a full station status block.
// Layout is protocol-locked. No IO.
func Encode(s Snapshot, stationName string) []uint16 {
	regs := make([]uint16, SlotsPerStation)

	regs[SlotPresenceCode] = PresenceNone
	if s.Count > 0 {
		regs[SlotPresenceCode] = PresenceNearby
	}
	regs[SlotBeaconCount] = uint16(min(s.Count, 0xFFFF))
	regs[SlotTickSeq] = uint16(s.Seq)

	// Name: two characters per slot, first character in the high byte.
	// Non-printable bytes become '?'; the rest of the window stays zero.
	for i := 0; i < len(stationName) && i < StationNameMaxChars; i++ {
		c := stationName[i]
		if c < 0x20 || c > 0x7E {
			c = '?'
		}
		shift := 8 * (1 - i%2)
		regs[SlotStationNameStart+i/2] |= uint16(c) << shift
	}

	return regs
}

// StationName reads the name back out of an encoded block.
func StationName(regs []uint16) string {
	var b []byte
	for _, r := range regs[SlotStationNameStart : SlotStationNameEnd+1] {
		for _, c := range [2]byte{byte(r >> 8), byte(r)} {
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}
