// Package crc implements the CRC-32/MPEG-2 checksum used by the KVH binary
// output formats. This is the non-reflected variant: polynomial 0x04C11DB7,
// initial value 0xFFFFFFFF, MSB-first, no final XOR. It is NOT the reflected
// CRC-32 from hash/crc32 (Ethernet/zip), which produces different values.
package crc

const poly = 0x04C11DB7

// ChecksumMPEG2 computes the CRC-32/MPEG-2 checksum of data. An empty span
// yields the initial value unchanged (zero rounds over 0xFFFFFFFF).
func ChecksumMPEG2(data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range data {
		crc ^= uint32(b) << 24
		for i := 0; i < 8; i++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
