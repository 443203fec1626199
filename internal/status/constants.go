// internal/status/constants.go
package status

// Beacon Status Block layout constants (Modbus holding registers).
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerStation is the fixed number of logical slots per reporting station.
const SlotsPerStation = 20

// ---- SLOT INDICES ----

// SlotPresenceCode holds the presence state for the last window.
const SlotPresenceCode = 0

// SlotBeaconCount holds the number of distinct beacons in the last window.
const SlotBeaconCount = 1

// SlotTickSeq holds the low 16 bits of the tick sequence number.
const SlotTickSeq = 2

// Slots 3–10 are reserved for future use.
const SlotReservedStart = 3
const SlotReservedEnd = 10

// ---- STATION NAME ----

// SlotStationNameStart is the first slot used for the station name.
// Station name is always placed at the END of the status block.
const SlotStationNameStart = 11

// SlotStationNameSlots is the number of slots reserved for the station name.
const SlotStationNameSlots = 8

// SlotStationNameEnd is the last slot used for the station name (inclusive).
const SlotStationNameEnd = SlotStationNameStart + SlotStationNameSlots - 1

// ---- LIMITS ----

// StationNameMaxChars is the maximum number of ASCII characters stored for the station name.
const StationNameMaxChars = 16

// ---- PRESENCE CODES ----

// PresenceUnknown represents boot state (no tick yet).
const PresenceUnknown uint16 = 0

// PresenceNone means the last window saw no beacons in range.
const PresenceNone uint16 = 1

// PresenceNearby means at least one beacon was in range.
const PresenceNearby uint16 = 2
