package main

import (
	"context"
	"github.com/kotche/notebridge/infrastructure/metrics"
	"github.com/kotche/notebridge/infrastructure/tracing"
	"github.com/kotche/notebridge/internal/app/bridge"
	"github.com/kotche/notebridge/internal/config"
	appmetrics "github.com/kotche/notebridge/internal/metrics"
	notes_repo "github.com/kotche/notebridge/internal/repository/notes"
	"github.com/kotche/notebridge/internal/service/kafka"
	notes_serv "github.com/kotche/notebridge/internal/service/notes"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.LoadBridgeConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appmetrics.InitBridge()
	metrics.StartMetricsServer(cfg.MetricsConfig.Addr)

	cleanup, err := tracing.InitTracing("notebridge-bridge", cfg.TracingConfig.Endpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	bot, err := telebot.NewBot(bridge.Settings(cfg.TelegramConfig.Token))
	if err != nil {
		log.Fatal(err)
	}

	var events kafka.EventPublisher = kafka.NopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		publisher, err := kafka.NewPublisher(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.Topic, 1, 1)
		if err != nil {
			log.Fatalf("failed to initialize kafka: %v", err)
		}
		events = publisher
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Printf("failed to close event publisher: %v", err)
		}
	}()

	notesRepo := notes_repo.NewDefaultRepository(nil, cfg.JoplinConfig.BaseURL(), cfg.JoplinConfig.Token)
	notesServ := notes_serv.NewDefaultService(notesRepo, events)
	bridgeImpl := bridge.New(bot, notesServ)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Println("shutting down bridge")
		bridgeImpl.Stop()
	}()

	log.Printf("forwarding notes to %s", cfg.JoplinConfig.BaseURL())
	bridgeImpl.Start()
}
