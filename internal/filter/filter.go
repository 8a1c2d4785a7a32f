// Package filter suppresses near-duplicate consecutive samples so the
// publish path is not flooded at the device's full output rate.
package filter

import (
	"math"

	"github.com/relabs-tech/kvh_computer/internal/kvh"
)

// Thresholds are the per-channel-group change thresholds. A sample is
// emitted only when at least one group moved by strictly more than its
// threshold since the last emitted sample.
type Thresholds struct {
	Gyro  float64 // rad/s
	Accel float64 // m/s²
	Temp  float64 // raw device units
}

// DefaultThresholds returns the device-tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Gyro: 0.01, Accel: 0.1, Temp: 1.0}
}

// Filter holds the last-emitted snapshot for one device stream. Each stream
// owns its own Filter; the snapshot is never shared across streams and never
// lives in package state.
type Filter struct {
	th     Thresholds
	primed bool

	gyro  [3]float64
	accel [3]float64
	temp  float64
}

// New returns an unprimed Filter; the first sample ever offered is always
// emitted.
func New(th Thresholds) *Filter {
	return &Filter{th: th}
}

// Accept reports whether s should be emitted downstream. On emit the whole
// snapshot is replaced with s, including the channel groups that did not
// individually change. Suppressed samples leave the snapshot untouched, so
// comparisons are always against the last emitted sample, not the last seen.
func (f *Filter) Accept(s kvh.Sample) bool {
	gyro := [3]float64{float64(s.GyroX), float64(s.GyroY), float64(s.GyroZ)}
	accel := [3]float64{float64(s.AccelX), float64(s.AccelY), float64(s.AccelZ)}
	temp := float64(s.TemperatureRaw)

	if !f.primed {
		f.primed = true
		f.gyro, f.accel, f.temp = gyro, accel, temp
		return true
	}

	changed := exceedsAny(gyro, f.gyro, f.th.Gyro) ||
		exceedsAny(accel, f.accel, f.th.Accel) ||
		math.Abs(temp-f.temp) > f.th.Temp
	if changed {
		f.gyro, f.accel, f.temp = gyro, accel, temp
	}
	return changed
}

func exceedsAny(cur, last [3]float64, threshold float64) bool {
	for i := range cur {
		if math.Abs(cur[i]-last[i]) > threshold {
			return true
		}
	}
	return false
}
