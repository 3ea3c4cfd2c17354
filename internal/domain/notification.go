package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NotificationType string

const (
	NotificationAppointmentCreated     NotificationType = "appointment_created"
	NotificationAppointmentRescheduled NotificationType = "appointment_rescheduled"
	NotificationAppointmentCancel      NotificationType = "appointment_cancel"
	NotificationBarberJoin             NotificationType = "barber_join"
	NotificationBarberLeave            NotificationType = "barber_leave"
	NotificationShopDelete             NotificationType = "shop_delete"
	NotificationShopOwner              NotificationType = "shop_owner"
)

// Notification is an outbox record addressed to one recipient.
type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID            uuid.UUID        `bun:"id,pk,type:uuid"`
	Type          NotificationType `bun:"type,notnull"`
	RecipientID   string           `bun:"recipient_id,notnull"`
	Message       string           `bun:"message,notnull"`
	AppointmentID *uuid.UUID       `bun:"appointment_id,type:uuid"`
	ShopID        string           `bun:"shop_id,nullzero"`
	Reason        string           `bun:"reason,nullzero"`
	Read          bool             `bun:"read,notnull"`
	CreatedAt     time.Time        `bun:"created_at,notnull"`
	PublishedAt   *time.Time       `bun:"published_at"`
}

func (n *Notification) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if n.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			n.ID = id
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}
