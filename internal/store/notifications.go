package store

import (
	"context"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

type NotificationOutbox interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}

type NotificationInbox interface {
	ListForRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, recipientID string, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

// OutboxDrain is used by the relay that forwards enqueued notifications to an external sink.
type OutboxDrain interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
