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

	log.Println("starting kvh-computer console (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
