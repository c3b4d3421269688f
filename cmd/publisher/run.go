package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/avolkovs/clipstream/internal/clips/kafka"
	"github.com/avolkovs/clipstream/internal/clips/outbox"
	pg "github.com/avolkovs/clipstream/internal/storage/postgres"
)

func run(ctx context.Context) error {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return fmt.Errorf("KAFKA_BROKERS is empty")
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "clip-events"
	}

	db, err := pg.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	producer := kafka.NewProducer(strings.Split(brokers, ","), topic)
	defer producer.Close()

	pub, err := outbox.NewPublisher(outbox.PublisherConfig{
		OutboxRepo: pg.NewOutboxRepo(db),
		Producer:   producer,
		Interval:   time.Second,
		BatchSize:  100,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("outbox publisher: %w", err)
	}

	if err := pub.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
