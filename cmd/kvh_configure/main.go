package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/kvh_computer/internal/app"
	"github.com/relabs-tech/kvh_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./kvh_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting kvh-computer device configurator (one-shot handshake)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConfigure(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	log.Println("device configured; start the IMU producer to begin decoding")
}
