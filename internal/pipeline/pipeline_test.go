package pipeline

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/relabs-tech/kvh_computer/internal/filter"
	"github.com/relabs-tech/kvh_computer/internal/kvh"
)

func testConfig() Config {
	return Config{ValidateCRC: true, Thresholds: filter.DefaultThresholds()}
}

func collect(samples *[]kvh.Sample) Sink {
	return func(s kvh.Sample) { *samples = append(*samples, s) }
}

func testSample(seq byte) kvh.Sample {
	return kvh.Sample{
		GyroX: 0.1, GyroY: 0.2, GyroZ: 0.3,
		AccelX: 1.5, AccelY: -2.1, AccelZ: 9.81,
		TimestampUS:    1234567890,
		Sequence:       seq,
		TemperatureRaw: 250,
		CRC:            0x109982C0,
	}
}

func TestNoiseThenOneFrame(t *testing.T) {
	var got []kvh.Sample
	p := New(testConfig(), collect(&got))

	noise := []byte{0xDE, 0xAD, 0xFE, 0x81, 0x00, 0x99, 0xFF}
	if n := p.Feed(append(noise, kvh.Encode(testSample(42))...)); n != 1 {
		t.Fatalf("Feed emitted %d samples, want 1", n)
	}
	if diff := cmp.Diff(testSample(42), got[0]); diff != "" {
		t.Errorf("sample mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitChunkDelivery(t *testing.T) {
	frame := kvh.Encode(testSample(7))

	splits := []int{1, 4, 20, 39}
	for _, at := range splits {
		var got []kvh.Sample
		p := New(testConfig(), collect(&got))

		if n := p.Feed(frame[:at]); n != 0 {
			t.Errorf("split at %d: first chunk emitted %d samples, want 0", at, n)
		}
		if n := p.Feed(frame[at:]); n != 1 {
			t.Errorf("split at %d: second chunk emitted %d samples, want 1", at, n)
		}
		if len(got) == 1 && got[0].Sequence != 7 {
			t.Errorf("split at %d: sequence = %d, want 7", at, got[0].Sequence)
		}
	}
}

func TestByteAtATimeDelivery(t *testing.T) {
	frame := kvh.Encode(testSample(3))
	var got []kvh.Sample
	p := New(testConfig(), collect(&got))

	total := 0
	for _, b := range frame {
		total += p.Feed([]byte{b})
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("byte-at-a-time delivery emitted %d samples, want 1", total)
	}
}

func TestCorruptFrameDropped(t *testing.T) {
	good := kvh.Encode(testSample(1))
	bad := kvh.Encode(testSample(2))
	bad[17] ^= 0x40 // corrupt an accel byte, CRC now stale

	var got []kvh.Sample
	p := New(testConfig(), collect(&got))
	p.Feed(bad)
	p.Feed(good)

	if len(got) != 1 || got[0].Sequence != 1 {
		t.Fatalf("got %d samples %+v, want only seq 1", len(got), got)
	}
}

func TestCorruptFrameAcceptedWithoutValidation(t *testing.T) {
	cfg := testConfig()
	cfg.ValidateCRC = false

	bad := kvh.Encode(testSample(2))
	bad[17] ^= 0x40

	var got []kvh.Sample
	p := New(cfg, collect(&got))
	if n := p.Feed(bad); n != 1 {
		t.Fatalf("Feed emitted %d samples with validation off, want 1", n)
	}
}

func TestFilterSuppressesDuplicates(t *testing.T) {
	var got []kvh.Sample
	p := New(testConfig(), collect(&got))

	// Identical motion data, only the sequence counter differs; the filter
	// compares channels, not metadata.
	stream := append(kvh.Encode(testSample(1)), kvh.Encode(testSample(2))...)
	stream = append(stream, kvh.Encode(testSample(3))...)

	if n := p.Feed(stream); n != 1 {
		t.Fatalf("Feed emitted %d samples, want 1 (duplicates suppressed)", n)
	}
}

func TestEmbeddedMagicInNoiseRecovers(t *testing.T) {
	// A stray magic followed by garbage decodes as a frame-sized span that
	// fails the CRC; dropping it must not wedge the pipeline, which resyncs
	// on the real frame behind it.
	stray := append(append([]byte{}, kvh.Magic...), bytes.Repeat([]byte{0x5A}, 36)...)
	frame := kvh.Encode(testSample(9))

	var got []kvh.Sample
	p := New(testConfig(), collect(&got))
	if n := p.Feed(append(stray, frame...)); n != 1 {
		t.Fatalf("Feed emitted %d samples, want 1", n)
	}
	if got[0].Sequence != 9 {
		t.Errorf("sequence = %d, want 9", got[0].Sequence)
	}
}

func TestNoiseOnlyStreamStaysBounded(t *testing.T) {
	cfg := testConfig()
	cfg.BufferCap = 256

	p := New(cfg, nil)
	for i := 0; i < 100; i++ {
		p.Feed(bytes.Repeat([]byte{0x11, 0x22}, 64))
	}
	if p.sync.Len() > 256 {
		t.Fatalf("pending buffer grew to %d bytes, cap is 256", p.sync.Len())
	}

	// The stream self-heals once real frames arrive.
	var got []kvh.Sample
	p.sink = collect(&got)
	if n := p.Feed(kvh.Encode(testSample(5))); n != 1 {
		t.Fatalf("Feed after noise emitted %d samples, want 1", n)
	}
}

func TestRunReadsUntilEOF(t *testing.T) {
	stream := append([]byte{0x00, 0x01}, kvh.Encode(testSample(4))...)

	var got []kvh.Sample
	p := New(testConfig(), collect(&got))
	if err := p.Run(context.Background(), bytes.NewReader(stream)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Run emitted %d samples, want 1", len(got))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocking := &blockingReader{unblock: make(chan struct{})}
	p := New(testConfig(), nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, blocking) }()

	cancel()
	close(blocking.unblock)

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

type blockingReader struct {
	unblock chan struct{}
}

func (r *blockingReader) Read(p []byte) (int, error) {
	<-r.unblock
	return 0, nil
}
