// Package kvh decodes the KVH IMU binary format B byte stream: fixed 40-byte
// big-endian frames led by the magic FE 81 FF 56 and trailed by a
// CRC-32/MPEG-2 over the first 36 bytes.
package kvh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/relabs-tech/kvh_computer/internal/crc"
)

// FrameSize is the wire size of one format B frame.
const FrameSize = 40

// Header is the format B magic word as a big-endian uint32.
const Header = 0xFE81FF56

// Magic is the header as it appears on the wire.
var Magic = []byte{0xFE, 0x81, 0xFF, 0x56}

// crcOffset is where the trailing checksum starts; the CRC covers
// everything before it.
const crcOffset = 36

var (
	// ErrIncomplete means the span is shorter than a full frame. Wait for
	// more transport bytes; this is not corruption.
	ErrIncomplete = errors.New("kvh: incomplete frame")

	// ErrBadHeader means the span does not start with the magic word. The
	// caller should resynchronize one byte forward and retry.
	ErrBadHeader = errors.New("kvh: bad frame header")
)

// CRCError reports an integrity failure. The decoded (unverified) fields are
// carried so the caller can log them before deciding to drop the sample.
type CRCError struct {
	Sample   Sample
	Computed uint32
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("kvh: crc mismatch: frame carries 0x%08X, computed 0x%08X",
		e.Sample.CRC, e.Computed)
}

// Decode interprets span as one format B frame. The span must begin at a
// synchronized offset; extra trailing bytes are ignored. When validateCRC is
// set and the checksum does not match, the returned error is a *CRCError and
// the Sample still holds the parsed fields.
func Decode(span []byte, validateCRC bool) (Sample, error) {
	if len(span) < FrameSize {
		return Sample{}, ErrIncomplete
	}
	span = span[:FrameSize]

	if binary.BigEndian.Uint32(span[0:4]) != Header {
		return Sample{}, ErrBadHeader
	}

	s := Sample{
		GyroX:          math.Float32frombits(binary.BigEndian.Uint32(span[4:8])),
		GyroY:          math.Float32frombits(binary.BigEndian.Uint32(span[8:12])),
		GyroZ:          math.Float32frombits(binary.BigEndian.Uint32(span[12:16])),
		AccelX:         math.Float32frombits(binary.BigEndian.Uint32(span[16:20])),
		AccelY:         math.Float32frombits(binary.BigEndian.Uint32(span[20:24])),
		AccelZ:         math.Float32frombits(binary.BigEndian.Uint32(span[24:28])),
		TimestampUS:    binary.BigEndian.Uint32(span[28:32]),
		Status:         span[32],
		Sequence:       span[33],
		TemperatureRaw: int16(binary.BigEndian.Uint16(span[34:36])),
		CRC:            binary.BigEndian.Uint32(span[36:40]),
	}

	if validateCRC {
		if sum := crc.ChecksumMPEG2(span[:crcOffset]); sum != s.CRC {
			return s, &CRCError{Sample: s, Computed: sum}
		}
	}

	return s, nil
}

// Encode packs s into a wire frame with a freshly computed checksum. The
// Sample's own CRC field is ignored; for a frame that decoded cleanly the
// recomputed value is identical.
func Encode(s Sample) []byte {
	buf := make([]byte, FrameSize)
	binary.BigEndian.PutUint32(buf[0:4], Header)
	binary.BigEndian.PutUint32(buf[4:8], math.Float32bits(s.GyroX))
	binary.BigEndian.PutUint32(buf[8:12], math.Float32bits(s.GyroY))
	binary.BigEndian.PutUint32(buf[12:16], math.Float32bits(s.GyroZ))
	binary.BigEndian.PutUint32(buf[16:20], math.Float32bits(s.AccelX))
	binary.BigEndian.PutUint32(buf[20:24], math.Float32bits(s.AccelY))
	binary.BigEndian.PutUint32(buf[24:28], math.Float32bits(s.AccelZ))
	binary.BigEndian.PutUint32(buf[28:32], s.TimestampUS)
	buf[32] = s.Status
	buf[33] = s.Sequence
	binary.BigEndian.PutUint16(buf[34:36], uint16(s.TemperatureRaw))
	binary.BigEndian.PutUint32(buf[36:40], crc.ChecksumMPEG2(buf[:crcOffset]))
	return buf
}
