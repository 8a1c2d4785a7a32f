// Replay tool: feeds a recorded KVH byte capture through the decode pipeline
// at a chosen chunk size and prints the accepted samples. Useful for
// inspecting a capture from a misbehaving link without the device attached.
//
// Sample usage:
//
//	kvh_replay -file capture.bin -chunk 17
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/relabs-tech/kvh_computer/internal/filter"
	"github.com/relabs-tech/kvh_computer/internal/kvh"
	"github.com/relabs-tech/kvh_computer/internal/pipeline"
)

func main() {
	file := flag.String("file", "", "path to a raw byte capture of the serial stream")
	chunk := flag.Int("chunk", 64, "chunk size to feed the pipeline with, emulating transport delivery")
	validateCRC := flag.Bool("validate-crc", true, "drop frames that fail the CRC check")
	noFilter := flag.Bool("no-filter", false, "print every decoded sample, bypassing change detection")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *chunk < 1 {
		log.Fatalf("chunk size must be positive, got %d", *chunk)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read capture: %v", err)
	}
	log.Printf("replaying %d bytes in chunks of %d", len(data), *chunk)

	thresholds := filter.DefaultThresholds()
	if *noFilter {
		// Zero thresholds with a strict > comparison emit on any change;
		// identical consecutive frames are still collapsed.
		thresholds = filter.Thresholds{}
	}

	count := 0
	p := pipeline.New(pipeline.Config{
		ValidateCRC: *validateCRC,
		Thresholds:  thresholds,
	}, func(s kvh.Sample) {
		count++
		fmt.Printf("seq=%3d ts=%10dus gyro=(%9.5f %9.5f %9.5f) accel=(%8.4f %8.4f %8.4f) temp=%4d status=0x%02X\n",
			s.Sequence, s.TimestampUS,
			s.GyroX, s.GyroY, s.GyroZ,
			s.AccelX, s.AccelY, s.AccelZ,
			s.TemperatureRaw, s.Status,
		)
	})

	for off := 0; off < len(data); off += *chunk {
		end := off + *chunk
		if end > len(data) {
			end = len(data)
		}
		p.Feed(data[off:end])
	}

	log.Printf("replay complete: %d samples emitted", count)
}
