package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

// Sink delivers a batch of notifications. A batch is marked published only after Publish returns nil,
// so sinks see at-least-once delivery.
type Sink interface {
	Publish(ctx context.Context, batch []domain.Notification) error
	Close() error
}

type RelayConfig struct {
	PollEvery time.Duration
	BatchSize int
}

type Relay struct {
	drain     store.OutboxDrain
	sink      Sink
	logger    *slog.Logger
	pollEvery time.Duration
	batchSize int
}

func NewRelay(drain store.OutboxDrain, sink Sink, logger *slog.Logger, cfg RelayConfig) *Relay {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		drain:     drain,
		sink:      sink,
		logger:    logger,
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
	}
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("outbox publish failed", slog.Any("err", err))
				continue
			}
			if n > 0 {
				r.logger.Debug("outbox published", slog.Int("count", n))
			}
		}
	}
}

// Flush publishes one batch and returns how many notifications were marked published.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	batch, err := r.drain.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := r.sink.Publish(ctx, batch); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(batch))
	for _, n := range batch {
		ids = append(ids, n.ID)
	}
	if err := r.drain.MarkPublished(ctx, ids); err != nil {
		return 0, err
	}
	return len(batch), nil
}
