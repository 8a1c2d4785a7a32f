package kvh

import (
	"bytes"
	"testing"
)

func TestAlignDiscardsLeadingNoise(t *testing.T) {
	s := NewSynchronizer(0)
	noise := []byte{0x00, 0x12, 0xFE, 0x81, 0xAB} // includes a partial magic
	s.Feed(noise)
	s.Feed(Magic)
	s.Feed([]byte{0x01, 0x02})

	dropped, ok := s.Align()
	if !ok {
		t.Fatal("Align() ok = false, want true")
	}
	if dropped != len(noise) {
		t.Errorf("Align() dropped = %d, want %d", dropped, len(noise))
	}
	if !bytes.HasPrefix(s.Bytes(), Magic) {
		t.Errorf("buffer after Align = %x, want magic prefix", s.Bytes())
	}
}

func TestAlignKeepsPartialMagicTail(t *testing.T) {
	s := NewSynchronizer(0)
	s.Feed([]byte{0x99, 0x99, 0xFE, 0x81, 0xFF}) // magic split across chunks

	if _, ok := s.Align(); ok {
		t.Fatal("Align() ok = true before magic completes")
	}
	if s.Len() < 3 {
		t.Fatalf("buffer retained %d bytes, want at least 3", s.Len())
	}

	s.Feed([]byte{0x56}) // completes FE 81 FF 56
	if _, ok := s.Align(); !ok {
		t.Fatal("Align() ok = false after magic completes across chunks")
	}
	if !bytes.HasPrefix(s.Bytes(), Magic) {
		t.Errorf("buffer after Align = %x, want magic prefix", s.Bytes())
	}
}

func TestAlignAlreadyAligned(t *testing.T) {
	s := NewSynchronizer(0)
	s.Feed(Magic)
	dropped, ok := s.Align()
	if !ok || dropped != 0 {
		t.Errorf("Align() = (%d, %v), want (0, true)", dropped, ok)
	}
}

func TestFeedEnforcesCap(t *testing.T) {
	s := NewSynchronizer(64)

	if dropped := s.Feed(make([]byte, 60)); dropped != 0 {
		t.Errorf("first Feed dropped %d, want 0", dropped)
	}
	if dropped := s.Feed(make([]byte, 10)); dropped != 6 {
		t.Errorf("second Feed dropped %d, want 6", dropped)
	}
	if s.Len() != 64 {
		t.Errorf("Len() = %d, want 64", s.Len())
	}

	// A single oversized chunk keeps only its newest cap bytes.
	if dropped := s.Feed(make([]byte, 200)); dropped != 200 {
		t.Errorf("oversized Feed dropped %d, want 200", dropped)
	}
	if s.Len() != 64 {
		t.Errorf("Len() after oversized Feed = %d, want 64", s.Len())
	}
}

func TestCapKeepsNewestBytes(t *testing.T) {
	s := NewSynchronizer(64)
	s.Feed(make([]byte, 40)) // zeros, no magic
	s.Feed(Magic)
	s.Feed(make([]byte, 36)) // rest of a would-be frame, pushes over the cap

	if _, ok := s.Align(); !ok {
		t.Fatal("magic lost after cap truncation of oldest bytes")
	}
	if s.Len() != FrameSize {
		t.Errorf("Len() = %d, want %d", s.Len(), FrameSize)
	}
}

func TestSkip(t *testing.T) {
	s := NewSynchronizer(0)
	s.Feed([]byte{1, 2, 3, 4, 5})
	s.Skip(2)
	if !bytes.Equal(s.Bytes(), []byte{3, 4, 5}) {
		t.Errorf("after Skip(2): %v", s.Bytes())
	}
	s.Skip(10)
	if s.Len() != 0 {
		t.Errorf("Skip past end left %d bytes", s.Len())
	}
}
