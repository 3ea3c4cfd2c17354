package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

type NotificationRepo struct {
	db *bun.DB
}

func NewNotificationRepo(db *bun.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Enqueue(ctx context.Context, n domain.Notification) error {
	m := n
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	return err
}

func (r *NotificationRepo) ListForRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	var rows []domain.Notification
	err := r.db.NewSelect().
		Model(&rows).
		Where("recipient_id = ?", recipientID).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, recipientID string, notificationID uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("read = TRUE").
		Where("id = ?", notificationID).
		Where("recipient_id = ?", recipientID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.db.NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("read = TRUE").
		Where("recipient_id = ?", recipientID).
		Where("read = FALSE").
		Exec(ctx)
	return err
}

func (r *NotificationRepo) FetchUnpublished(ctx context.Context, limit int) ([]domain.Notification, error) {
	var rows []domain.Notification
	err := r.db.NewSelect().
		Model(&rows).
		Where("published_at IS NULL").
		OrderExpr("created_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *NotificationRepo) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("published_at = ?", time.Now().UTC()).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}
