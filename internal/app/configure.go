package app

import (
	"bytes"
	"fmt"
	"log"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/kvh_computer/internal/config"
	"github.com/relabs-tech/kvh_computer/internal/kvh"
)

// configCommands is the one-time setup handshake that places the device into
// 200Hz binary format B output. It shares the transport with the decode
// pipeline but not its framing, so it runs before the pipeline starts, never
// alongside it.
var configCommands = []string{
	"=CONFIG,1",          // enter configuration mode
	"=OUTPUTFMT,B",       // binary format B
	"=OUTPUTRATE,200",    // 200Hz output
	"=OUTPUTBAUD,115200", // serial link speed
	"=CONFIG,0",          // exit configuration mode, start data output
}

// RunConfigure sends the configuration handshake to the KVH device and then
// reads a short burst of output to verify format B headers appear.
func RunConfigure() error {
	cfg := config.Get()

	serialOpts := serial.OpenOptions{
		PortName:        cfg.KVHSerialPort,
		BaudRate:        uint(cfg.KVHBaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open KVH serial port %s: %w", cfg.KVHSerialPort, err)
	}
	defer port.Close()
	log.Printf("KVH serial port opened on %s at %d baud", cfg.KVHSerialPort, cfg.KVHBaudRate)

	for i, cmd := range configCommands {
		log.Printf("sending configuration command %d/%d: %s", i+1, len(configCommands), cmd)
		if _, err := port.Write([]byte(cmd + "\r\n")); err != nil {
			return fmt.Errorf("write %q: %w", cmd, err)
		}
		// The device needs a moment between commands while in config mode.
		time.Sleep(500 * time.Millisecond)
	}
	log.Println("configuration commands sent, verifying output format")

	buf := make([]byte, 4096)
	collected := make([]byte, 0, 16384)
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && len(collected) < cap(collected) {
		n, err := port.Read(buf)
		if n > 0 {
			collected = append(collected, buf[:n]...)
		}
		if err != nil {
			break
		}
	}

	count := bytes.Count(collected, kvh.Magic)
	if count == 0 {
		return fmt.Errorf("no format B headers in %d bytes read after configuration", len(collected))
	}
	log.Printf("found %d format B headers in %d bytes, device configured", count, len(collected))
	return nil
}
