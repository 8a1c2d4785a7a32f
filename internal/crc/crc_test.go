package crc

import "testing"

func TestChecksumMPEG2KnownValues(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint32
	}{
		// Zero iterations leave the accumulator at its initial value.
		{"empty", nil, 0xFFFFFFFF},
		// Standard CRC-32/MPEG-2 check value.
		{"check string", []byte("123456789"), 0x0376E6E7},
		// KVH format B magic header.
		{"kvh header", []byte{0xFE, 0x81, 0xFF, 0x56}, 0x5529CACC},
		{"counting pattern", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B}, 0xAD88945B},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChecksumMPEG2(tc.data); got != tc.want {
				t.Errorf("ChecksumMPEG2(%x) = 0x%08X, want 0x%08X", tc.data, got, tc.want)
			}
		})
	}
}

func TestChecksumMPEG2Deterministic(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x42}
	first := ChecksumMPEG2(data)
	for i := 0; i < 100; i++ {
		if got := ChecksumMPEG2(data); got != first {
			t.Fatalf("call %d: ChecksumMPEG2 = 0x%08X, want 0x%08X", i, got, first)
		}
	}
}

func TestChecksumMPEG2NotReflected(t *testing.T) {
	// The reflected (IEEE) CRC of "123456789" is 0xCBF43926; a correct
	// MPEG-2 implementation must not produce it.
	if got := ChecksumMPEG2([]byte("123456789")); got == 0xCBF43926 {
		t.Fatalf("ChecksumMPEG2 produced the reflected IEEE value 0x%08X", got)
	}
}
