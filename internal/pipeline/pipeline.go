// Package pipeline drives the synchronize → decode → filter chain for one
// device stream. Bytes go in as arbitrary-sized chunks with no frame
// alignment guarantees; validated, change-filtered samples come out through
// the sink. One Pipeline per physical device, one goroutine per Pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/relabs-tech/kvh_computer/internal/diag"
	"github.com/relabs-tech/kvh_computer/internal/filter"
	"github.com/relabs-tech/kvh_computer/internal/kvh"
)

// Sink receives each accepted sample. Called synchronously from the
// pipeline's worker goroutine.
type Sink func(kvh.Sample)

// Config carries the decode and filtering knobs.
type Config struct {
	// ValidateCRC enables the integrity check; frames failing it are
	// dropped (and counted). Disable only for bench diagnosis of a link
	// that corrupts frames faster than it delivers them.
	ValidateCRC bool

	// BufferCap bounds the pending-byte buffer; zero means
	// kvh.DefaultBufferCap.
	BufferCap int

	Thresholds filter.Thresholds
}

// Pipeline owns all mutable state for one stream: the synchronizer's pending
// buffer and the filter's last-emitted snapshot. Not safe for concurrent
// use.
type Pipeline struct {
	sync        *kvh.Synchronizer
	filt        *filter.Filter
	validateCRC bool
	sink        Sink
}

// New builds a Pipeline that forwards accepted samples to sink. A nil sink
// decodes and counts but publishes nowhere.
func New(cfg Config, sink Sink) *Pipeline {
	return &Pipeline{
		sync:        kvh.NewSynchronizer(cfg.BufferCap),
		filt:        filter.New(cfg.Thresholds),
		validateCRC: cfg.ValidateCRC,
		sink:        sink,
	}
}

// Feed pushes one transport chunk through the pipeline and returns how many
// samples were forwarded to the sink. Partial frames stay buffered for the
// next chunk; nothing here is fatal.
func (p *Pipeline) Feed(chunk []byte) int {
	if dropped := p.sync.Feed(chunk); dropped > 0 {
		diag.BufferOverflows.Inc()
		diag.NoiseBytes.Add(float64(dropped))
		log.Printf("pipeline: pending buffer overflow, dropped %d oldest bytes", dropped)
	}

	emitted := 0
	for {
		noise, ok := p.sync.Align()
		if noise > 0 {
			diag.NoiseBytes.Add(float64(noise))
		}
		if !ok {
			return emitted
		}
		if p.sync.Len() < kvh.FrameSize {
			// Incomplete: wait for more transport bytes.
			return emitted
		}

		s, err := kvh.Decode(p.sync.Bytes(), p.validateCRC)
		if err != nil {
			var crcErr *kvh.CRCError
			switch {
			case errors.As(err, &crcErr):
				diag.CRCMismatches.Inc()
				log.Printf("pipeline: dropping frame seq=%d ts=%dus: %v",
					crcErr.Sample.Sequence, crcErr.Sample.TimestampUS, err)
				p.sync.Skip(kvh.FrameSize)
			case errors.Is(err, kvh.ErrBadHeader):
				// Coincidental magic match in noise; resync one byte on.
				diag.BadHeaders.Inc()
				p.sync.Skip(1)
			default:
				// ErrIncomplete cannot happen after the length check above;
				// treat anything unexpected like a bad header.
				diag.BadHeaders.Inc()
				p.sync.Skip(1)
			}
			continue
		}

		diag.FramesDecoded.Inc()
		p.sync.Skip(kvh.FrameSize)

		if p.filt.Accept(s) {
			diag.SamplesPublished.Inc()
			if p.sink != nil {
				p.sink(s)
			}
			emitted++
		} else {
			diag.SamplesSuppressed.Inc()
		}
	}
}

// Run reads chunks from r until the context is cancelled or the transport
// fails. Already-buffered but not-yet-synchronized bytes are discarded on
// shutdown, which is safe: they never produced a sample.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			p.Feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("pipeline: transport read: %w", err)
		}
	}
}
