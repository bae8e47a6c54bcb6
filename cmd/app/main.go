package main

import (
	"flag"
	"log"
	"os"

	"OeeForecast/internal/di"
	"OeeForecast/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("env=%s clickhouse=%s/%s kafka=%v", cfg.Environment, cfg.ClickHouse.Host, cfg.ClickHouse.Database, cfg.Kafka.Brokers)

	// Run blocks until SIGINT or SIGTERM.
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
