package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDGPS      string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string

	// Topics
	TopicSamples string
	TopicGPS     string

	// KVH serial link
	KVHSerialPort string
	KVHBaudRate   int

	// Decode pipeline
	// ValidateCRC drops frames whose CRC-32/MPEG-2 does not match.
	ValidateCRC bool
	// SyncBufferCap bounds the pending-byte buffer while hunting for the
	// sync pattern.
	SyncBufferCap int

	// Change-detection thresholds. A sample is published only when at
	// least one group moved by strictly more than its threshold.
	ThresholdGyro  float64 // rad/s
	ThresholdAccel float64 // m/s²
	ThresholdTemp  float64 // raw device units

	// GPS (absolute time anchor for the 1PPS-relative IMU timestamps)
	GPSSerialPort string
	GPSBaudRate   int

	// Web Server
	WebServerPort int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot access it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for initialization,
//     read lock for Get() allows multiple concurrent readers.
//
// External code must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns a Config pre-filled with the values that are optional in
// the config file.
func defaults() *Config {
	return &Config{
		MQTTClientIDProducer: "kvh-imu-producer",
		MQTTClientIDGPS:      "kvh-gps-producer",
		MQTTClientIDConsole:  "kvh-console-subscriber",
		MQTTClientIDWeb:      "kvh-web-subscriber",
		TopicSamples:         "kvh/imu/samples",
		TopicGPS:             "kvh/gps",
		ValidateCRC:          true,
		SyncBufferCap:        4096,
		ThresholdGyro:        0.01,
		ThresholdAccel:       0.1,
		ThresholdTemp:        1.0,
		WebServerPort:        8080,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_SAMPLES":
		c.TopicSamples = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// KVH serial link
	case "KVH_SERIAL_PORT":
		c.KVHSerialPort = value
	case "KVH_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid KVH_BAUD_RATE %q: %w", value, err)
		}
		c.KVHBaudRate = rate

	// Decode pipeline
	case "KVH_VALIDATE_CRC":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid KVH_VALIDATE_CRC %q: %w", value, err)
		}
		c.ValidateCRC = b
	case "KVH_SYNC_BUFFER_CAP":
		capVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid KVH_SYNC_BUFFER_CAP %q: %w", value, err)
		}
		if capVal < 40 {
			return fmt.Errorf("KVH_SYNC_BUFFER_CAP must hold at least one 40-byte frame, got %d", capVal)
		}
		c.SyncBufferCap = capVal

	// Change-detection thresholds
	case "KVH_THRESHOLD_GYRO":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid KVH_THRESHOLD_GYRO %q: %w", value, err)
		}
		if v < 0 {
			return fmt.Errorf("KVH_THRESHOLD_GYRO must be >= 0, got %g", v)
		}
		c.ThresholdGyro = v
	case "KVH_THRESHOLD_ACCEL":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid KVH_THRESHOLD_ACCEL %q: %w", value, err)
		}
		if v < 0 {
			return fmt.Errorf("KVH_THRESHOLD_ACCEL must be >= 0, got %g", v)
		}
		c.ThresholdAccel = v
	case "KVH_THRESHOLD_TEMP":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid KVH_THRESHOLD_TEMP %q: %w", value, err)
		}
		if v < 0 {
			return fmt.Errorf("KVH_THRESHOLD_TEMP must be >= 0, got %g", v)
		}
		c.ThresholdTemp = v

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.KVHSerialPort == "" {
		return fmt.Errorf("KVH_SERIAL_PORT is required")
	}
	if c.KVHBaudRate == 0 {
		return fmt.Errorf("KVH_BAUD_RATE is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
