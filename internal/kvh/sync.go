package kvh

import "bytes"

// DefaultBufferCap bounds the pending-byte buffer of a Synchronizer: room
// for over a hundred frames of backlog or noise.
const DefaultBufferCap = 4096

// Synchronizer owns the undelivered transport bytes for one device stream
// and locates frame starts in them. It is not safe for concurrent use; each
// stream's pipeline worker owns exactly one Synchronizer.
type Synchronizer struct {
	buf []byte
	cap int
}

// NewSynchronizer returns a Synchronizer whose buffer never grows beyond
// bufferCap bytes. A cap below FrameSize falls back to DefaultBufferCap.
func NewSynchronizer(bufferCap int) *Synchronizer {
	if bufferCap < FrameSize {
		bufferCap = DefaultBufferCap
	}
	return &Synchronizer{cap: bufferCap}
}

// Feed appends one transport chunk. If the buffer would exceed its cap, the
// oldest bytes are dropped first and their count is returned; a persistently
// non-conforming stream therefore costs bounded memory, not correctness.
func (s *Synchronizer) Feed(p []byte) (dropped int) {
	if len(p) > s.cap {
		dropped += len(p) - s.cap
		p = p[len(p)-s.cap:]
	}
	if over := len(s.buf) + len(p) - s.cap; over > 0 {
		dropped += over
		s.buf = append(s.buf[:0], s.buf[over:]...)
	}
	s.buf = append(s.buf, p...)
	return dropped
}

// Align discards noise ahead of the first magic occurrence so that the
// buffer's logical start becomes a candidate frame start. When the magic is
// not present it keeps the last len(Magic)-1 bytes, since a partial magic may
// span the boundary with the next chunk, and reports ok=false. Either way it
// returns how many noise bytes were discarded.
func (s *Synchronizer) Align() (dropped int, ok bool) {
	i := bytes.Index(s.buf, Magic)
	if i < 0 {
		if tail := len(Magic) - 1; len(s.buf) > tail {
			dropped = len(s.buf) - tail
			s.buf = append(s.buf[:0], s.buf[dropped:]...)
		}
		return dropped, false
	}
	if i > 0 {
		s.buf = append(s.buf[:0], s.buf[i:]...)
	}
	return i, true
}

// Bytes returns the pending buffer. The slice aliases internal storage and is
// only valid until the next Feed or Skip.
func (s *Synchronizer) Bytes() []byte { return s.buf }

// Len returns the number of pending bytes.
func (s *Synchronizer) Len() int { return len(s.buf) }

// Skip drops the first n pending bytes: a consumed frame, a rejected frame,
// or a single byte after a coincidental header match.
func (s *Synchronizer) Skip(n int) {
	if n >= len(s.buf) {
		s.buf = s.buf[:0]
		return
	}
	s.buf = append(s.buf[:0], s.buf[n:]...)
}
