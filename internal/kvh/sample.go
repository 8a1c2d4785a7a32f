// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package kvh

// Sample is one decoded, validated format B frame. Samples are value types:
// construct once via Decode, never mutate.
type Sample struct {
	GyroX float32 `json:"gyro_x"` // rad/s
	GyroY float32 `json:"gyro_y"`
	GyroZ float32 `json:"gyro_z"`

	AccelX float32 `json:"accel_x"` // m/s²
	AccelY float32 `json:"accel_y"`
	AccelZ float32 `json:"accel_z"`

	// Microseconds since the last 1PPS edge; wraps at 2^32. Pair with the
	// GPS fix stream for an absolute time reference.
	TimestampUS uint32 `json:"timestamp_us"`

	Status   byte `json:"status"`   // per-channel validity bits, see below
	Sequence byte `json:"sequence"` // 0-127, wraps per frame (wrap is normal)

	TemperatureRaw int16 `json:"temperature_raw"` // device units, no °C conversion here

	CRC uint32 `json:"crc"` // as transmitted, kept for audit/debug
}

// Status bit table, taken as authoritative from the device reference:
// bit 0 gyro X, bit 1 gyro Y, bit 2 gyro Z, bit 4 accel X, bit 5 accel Y,
// bit 6 accel Z. Bits 3 and 7 are reserved. A set bit means the channel is
// NOT valid; 0 means valid.
const (
	statusGyroXInvalid  = 0x01
	statusGyroYInvalid  = 0x02
	statusGyroZInvalid  = 0x04
	statusAccelXInvalid = 0x10
	statusAccelYInvalid = 0x20
	statusAccelZInvalid = 0x40
)

func (s Sample) GyroXValid() bool  { return s.Status&statusGyroXInvalid == 0 }
func (s Sample) GyroYValid() bool  { return s.Status&statusGyroYInvalid == 0 }
func (s Sample) GyroZValid() bool  { return s.Status&statusGyroZInvalid == 0 }
func (s Sample) AccelXValid() bool { return s.Status&statusAccelXInvalid == 0 }
func (s Sample) AccelYValid() bool { return s.Status&statusAccelYInvalid == 0 }
func (s Sample) AccelZValid() bool { return s.Status&statusAccelZInvalid == 0 }

// AllValid reports whether every gyro and accel channel is flagged valid.
func (s Sample) AllValid() bool {
	return s.Status&(statusGyroXInvalid|statusGyroYInvalid|statusGyroZInvalid|
		statusAccelXInvalid|statusAccelYInvalid|statusAccelZInvalid) == 0
}
