package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/kotche/notebridge/infrastructure/metrics"
	"github.com/kotche/notebridge/infrastructure/tracing"
	"github.com/kotche/notebridge/internal/app/journal"
	"github.com/kotche/notebridge/internal/config"
	appmetrics "github.com/kotche/notebridge/internal/metrics"
	journal_repo "github.com/kotche/notebridge/internal/repository/journal"
	"github.com/kotche/notebridge/internal/service/kafka"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadJournalConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appmetrics.InitJournal()
	metrics.StartMetricsServer(cfg.MetricsConfig.Addr)

	cleanup, err := tracing.InitTracing("notebridge-journal", cfg.TracingConfig.Endpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	connStr := cfg.PostgresConfig.ConnString()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalln(err)
	}
	defer db.Close()

	if err = runMigrations(connStr); err != nil {
		log.Fatalln("migration error:", err)
	}

	consumer := kafka.NewConsumer(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.Topic, cfg.KafkaConfig.GroupID)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Printf("failed to close kafka consumer: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journalImpl := journal.New(consumer, journal_repo.NewDefaultRepository(db))
	if err = journalImpl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("journal stopped: %v", err)
	}
}

func runMigrations(dbURL string) error {
	m, err := migrate.New(
		"file://migrations",
		dbURL,
	)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err = m.Up(); !errors.Is(err, migrate.ErrNoChange) && err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
