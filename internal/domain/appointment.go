package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	// AppointmentStatusPending is reserved for an approval workflow; nothing transitions into it today.
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is one booking of a shop slot. StaffID is empty when any staff member may serve it.
// ShopName, ClientName and ClientPhone are copied at creation and never re-synced.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          uuid.UUID         `bun:"id,pk,type:uuid"`
	ShopID      string            `bun:"shop_id,notnull"`
	ShopName    string            `bun:"shop_name,notnull"`
	ClientID    string            `bun:"client_id,notnull"`
	ClientName  string            `bun:"client_name,notnull"`
	ClientPhone string            `bun:"client_phone,notnull"`
	StaffID     string            `bun:"staff_id,nullzero"`
	Date        string            `bun:"appt_date,notnull"`
	Time        string            `bun:"appt_time,notnull"`
	Status      AppointmentStatus `bun:"status,notnull"`
	CreatedAt   time.Time         `bun:"created_at,notnull"`
	UpdatedAt   time.Time         `bun:"updated_at,nullzero"`
}

func (a *Appointment) Active() bool {
	return a.Status != AppointmentStatusCancelled
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}
