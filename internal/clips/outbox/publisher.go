package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkovs/clipstream/internal/clips/kafka"
	"github.com/avolkovs/clipstream/internal/storage/postgres"
)

// Publisher drains the outbox table into Kafka: at-least-once, so consumers
// of clip events must be idempotent.
type Publisher struct {
	outboxRepo *postgres.OutboxRepo
	producer   *kafka.Producer
	interval   time.Duration
	batchSize  int
	logger     zerolog.Logger
}

type PublisherConfig struct {
	OutboxRepo *postgres.OutboxRepo
	Producer   *kafka.Producer
	Interval   time.Duration
	BatchSize  int
	Logger     zerolog.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if cfg.OutboxRepo == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if cfg.Producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got: %v", cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got: %d", cfg.BatchSize)
	}

	return &Publisher{
		outboxRepo: cfg.OutboxRepo,
		producer:   cfg.Producer,
		interval:   cfg.Interval,
		batchSize:  cfg.BatchSize,
		logger:     cfg.Logger.With().Str("component", "outbox_publisher").Logger(),
	}, nil
}

// Start polls for pending events until ctx is cancelled. A failed batch is
// logged and retried on the next tick; the loop itself never dies on
// publication errors.
func (p *Publisher) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().
		Dur("interval", p.interval).
		Int("batch_size", p.batchSize).
		Msg("outbox publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Err(ctx.Err()).Msg("outbox publisher stopped")
			return ctx.Err()

		case <-ticker.C:
			if err := p.publishBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to publish batch")
			}
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context) error {
	records, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	var published, failed int
	for _, record := range records {
		eventLogger := p.logger.With().
			Str("event_id", record.EventID).
			Str("event_type", record.EventType).
			Str("clip_id", record.AggregateID).
			Int64("outbox_id", record.ID).
			Logger()

		if err := p.producer.Publish(ctx, record.EventID, record.Payload); err != nil {
			eventLogger.Error().Err(err).Msg("failed to publish event")
			failed++
			continue
		}
		published++

		// Publish succeeded but the mark failed: the event goes out again
		// on the next tick. Fine under at-least-once.
		if err := p.outboxRepo.MarkProcessed(ctx, record.ID); err != nil {
			eventLogger.Warn().Err(err).Msg("failed to mark event as processed")
		}
	}

	p.logger.Info().
		Int("total", len(records)).
		Int("published", published).
		Int("failed", failed).
		Msg("batch processed")

	return nil
}
