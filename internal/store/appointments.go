package store

import (
	"context"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

type AppointmentRepository interface {
	Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	ListByShop(ctx context.Context, shopID string) ([]domain.Appointment, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Appointment, error)
	ListByStaff(ctx context.Context, staffID string, shopIDs []string) ([]domain.Appointment, error)
	// ListForDate returns every appointment of the shop on date, cancelled ones included.
	ListForDate(ctx context.Context, shopID, date string) ([]domain.Appointment, error)

	// InShopTransaction runs fn with writes to shopID's appointments serialized against other callers.
	InShopTransaction(ctx context.Context, shopID string, fn func(ctx context.Context, tx ShopTx) error) error
}

// ShopTx is the view of one shop's appointment book inside InShopTransaction.
type ShopTx interface {
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	ListAppointments(ctx context.Context, date string) ([]domain.Appointment, error)
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error
}
