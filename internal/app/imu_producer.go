// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/kvh_computer/internal/config"
	"github.com/relabs-tech/kvh_computer/internal/filter"
	"github.com/relabs-tech/kvh_computer/internal/kvh"
	"github.com/relabs-tech/kvh_computer/internal/pipeline"
)

// RunIMUProducer opens the KVH serial port, runs the decode pipeline over its
// byte stream, and publishes accepted samples as JSON to MQTT. The device is
// expected to already be in binary format B output (see RunConfigure).
func RunIMUProducer() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("IMU producer connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open KVH serial port ----
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

	// ---- 3) Decode pipeline with an MQTT publish sink ----
	sink := func(s kvh.Sample) {
		payload, err := json.Marshal(s)
		if err != nil {
			log.Printf("sample marshal error: %v", err)
			return
		}
		if token := client.Publish(cfg.TopicSamples, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (samples): %v", token.Error())
		}
	}

	p := pipeline.New(pipeline.Config{
		ValidateCRC: cfg.ValidateCRC,
		BufferCap:   cfg.SyncBufferCap,
		Thresholds: filter.Thresholds{
			Gyro:  cfg.ThresholdGyro,
			Accel: cfg.ThresholdAccel,
			Temp:  cfg.ThresholdTemp,
		},
	}, sink)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("starting KVH decode pipeline")
	if err := p.Run(ctx, port); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("IMU producer shutting down")
	return nil
}
