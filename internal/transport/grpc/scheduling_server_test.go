package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/service/appointments"
	"barberbook/backend/internal/service/shops"
	"barberbook/backend/internal/service/validation"
	"barberbook/backend/internal/store"
	"barberbook/backend/internal/store/memory"
)

type fakeAppointmentsService struct {
	createFn     func(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	rescheduleFn func(ctx context.Context, in appointments.RescheduleInput) (domain.Appointment, error)
	setStatusFn  func(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	getFn        func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	listFn       func(ctx context.Context, by, id string) ([]domain.Appointment, error)
	slotsFn      func(ctx context.Context, in appointments.AvailabilityInput, anyStaff bool) ([]string, error)
}

func (f *fakeAppointmentsService) Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeAppointmentsService) Reschedule(ctx context.Context, in appointments.RescheduleInput) (domain.Appointment, error) {
	if f.rescheduleFn == nil {
		panic("Reschedule not configured")
	}
	return f.rescheduleFn(ctx, in)
}

func (f *fakeAppointmentsService) SetStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if f.setStatusFn == nil {
		panic("SetStatus not configured")
	}
	return f.setStatusFn(ctx, id, status)
}

func (f *fakeAppointmentsService) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeAppointmentsService) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeAppointmentsService) ListForShop(ctx context.Context, shopID string) ([]domain.Appointment, error) {
	return f.list(ctx, "shop", shopID)
}

func (f *fakeAppointmentsService) ListForClient(ctx context.Context, clientID string) ([]domain.Appointment, error) {
	return f.list(ctx, "client", clientID)
}

func (f *fakeAppointmentsService) ListForStaff(ctx context.Context, staffID string) ([]domain.Appointment, error) {
	return f.list(ctx, "staff", staffID)
}

func (f *fakeAppointmentsService) list(ctx context.Context, by, id string) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx, by, id)
}

func (f *fakeAppointmentsService) AvailableSlots(ctx context.Context, in appointments.AvailabilityInput) ([]string, error) {
	if f.slotsFn == nil {
		panic("AvailableSlots not configured")
	}
	return f.slotsFn(ctx, in, false)
}

func (f *fakeAppointmentsService) AvailableSlotsAnyStaff(ctx context.Context, in appointments.AvailabilityInput) ([]string, error) {
	if f.slotsFn == nil {
		panic("AvailableSlotsAnyStaff not configured")
	}
	return f.slotsFn(ctx, in, true)
}

// fakeShopsService only answers Get; other methods panic through the nil embedded interface.
type fakeShopsService struct {
	shopsService
	getFn func(ctx context.Context, shopID string) (domain.Shop, error)
}

func (f *fakeShopsService) Get(ctx context.Context, shopID string) (domain.Shop, error) {
	if f.getFn == nil {
		return domain.Shop{ID: shopID, OwnerID: "owner"}, nil
	}
	return f.getFn(ctx, shopID)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestCreateAppointment_MapsErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"conflict", store.ErrConflict, codes.FailedPrecondition},
		{"closed day", fmt.Errorf("shop s1: %w", appointments.ErrInvalidConfiguration), codes.FailedPrecondition},
		{"missing shop", fmt.Errorf("shop s1: %w", store.ErrNotFound), codes.NotFound},
		{"validation", validation.Errorf("date is required"), codes.InvalidArgument},
		{"forbidden", shops.ErrForbidden, codes.PermissionDenied},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"unexpected", errors.New("disk full"), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer(&fakeAppointmentsService{
				createFn: func(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error) {
					return domain.Appointment{}, tc.err
				},
			}, &fakeShopsService{}, memory.New(), quietLogger())

			_, err := srv.CreateAppointment(context.Background(), &CreateAppointmentRequest{ShopID: "s1", ClientID: "c1", Date: "2026-01-05", Time: "09:00"})
			if status.Code(err) != tc.want {
				t.Fatalf("code = %s, want %s (err=%v)", status.Code(err), tc.want, err)
			}
		})
	}
}

func TestCreateAppointment_RejectsUnknownActor(t *testing.T) {
	srv := NewServer(&fakeAppointmentsService{}, &fakeShopsService{}, memory.New(), quietLogger())

	_, err := srv.CreateAppointment(context.Background(), &CreateAppointmentRequest{ShopID: "s1", Actor: "robot"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
}

func TestCreateAppointment_EnqueuesNotification(t *testing.T) {
	notes := memory.New()
	id := uuid.MustParse("00000000-0000-0000-0000-000000000010")

	srv := NewServer(&fakeAppointmentsService{
		createFn: func(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error) {
			return domain.Appointment{ID: id, ShopID: in.ShopID, ClientID: in.ClientID, ClientName: "Ana", Date: in.Date, Time: in.Time, Status: domain.AppointmentStatusConfirmed}, nil
		},
	}, &fakeShopsService{}, notes, quietLogger())

	resp, err := srv.CreateAppointment(context.Background(), &CreateAppointmentRequest{ShopID: "s1", ClientID: "c1", Date: "2026-01-05", Time: "09:00"})
	if err != nil {
		t.Fatalf("CreateAppointment error: %v", err)
	}
	if resp.Appointment.ID != id.String() || resp.Appointment.Status != "confirmed" {
		t.Fatalf("appointment = %+v", resp.Appointment)
	}

	inbox, err := notes.ListForRecipient(context.Background(), "owner")
	if err != nil {
		t.Fatalf("ListForRecipient: %v", err)
	}
	if len(inbox) != 1 || inbox[0].Type != domain.NotificationAppointmentCreated {
		t.Fatalf("owner inbox = %+v", inbox)
	}
}

func TestSetAppointmentStatus_CancelNotifiesOnce(t *testing.T) {
	notes := memory.New()
	id := uuid.MustParse("00000000-0000-0000-0000-000000000011")
	current := domain.Appointment{ID: id, ShopID: "s1", ClientID: "c1", StaffID: "a", Status: domain.AppointmentStatusConfirmed}

	srv := NewServer(&fakeAppointmentsService{
		getFn: func(ctx context.Context, got uuid.UUID) (domain.Appointment, error) {
			return current, nil
		},
		setStatusFn: func(ctx context.Context, got uuid.UUID, st domain.AppointmentStatus) (domain.Appointment, error) {
			current.Status = st
			return current, nil
		},
	}, &fakeShopsService{}, notes, quietLogger())

	req := &SetAppointmentStatusRequest{AppointmentID: id.String(), Status: "Cancelled", Reason: "enfermedad", Actor: "barber"}
	for i := 0; i < 2; i++ {
		if _, err := srv.SetAppointmentStatus(context.Background(), req); err != nil {
			t.Fatalf("SetAppointmentStatus error: %v", err)
		}
	}

	inbox, _ := notes.ListForRecipient(context.Background(), "c1")
	if len(inbox) != 1 {
		t.Fatalf("client notifications = %d, want 1", len(inbox))
	}
	if inbox[0].Reason != "enfermedad" {
		t.Fatalf("reason = %q", inbox[0].Reason)
	}
}

func TestDeleteAppointment_RejectsBadUUID(t *testing.T) {
	srv := NewServer(&fakeAppointmentsService{}, &fakeShopsService{}, memory.New(), quietLogger())

	_, err := srv.DeleteAppointment(context.Background(), &AppointmentIDRequest{AppointmentID: "nope"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
}

func TestDeleteAppointment_NotFound(t *testing.T) {
	srv := NewServer(&fakeAppointmentsService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error { return store.ErrNotFound },
	}, &fakeShopsService{}, memory.New(), quietLogger())

	_, err := srv.DeleteAppointment(context.Background(), &AppointmentIDRequest{AppointmentID: uuid.NewString()})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.NotFound)
	}
}

func TestListAppointments_RequiresExactlyOneFilter(t *testing.T) {
	var gotBy string
	srv := NewServer(&fakeAppointmentsService{
		listFn: func(ctx context.Context, by, id string) ([]domain.Appointment, error) {
			gotBy = by
			return nil, nil
		},
	}, &fakeShopsService{}, memory.New(), quietLogger())

	if _, err := srv.ListAppointments(context.Background(), &ListAppointmentsRequest{ShopID: "s1", ClientID: "c1"}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}
	if _, err := srv.ListAppointments(context.Background(), &ListAppointmentsRequest{}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.InvalidArgument)
	}

	resp, err := srv.ListAppointments(context.Background(), &ListAppointmentsRequest{StaffID: "a"})
	if err != nil {
		t.Fatalf("ListAppointments error: %v", err)
	}
	if gotBy != "staff" {
		t.Fatalf("listed by %q, want staff", gotBy)
	}
	if resp.Appointments == nil {
		t.Fatalf("appointments should be an empty list, not nil")
	}
}

func TestAvailableSlots_RoutesAnyStaffAndExempt(t *testing.T) {
	exempt := uuid.MustParse("00000000-0000-0000-0000-000000000012")
	var gotAny bool
	var gotExempt uuid.UUID

	srv := NewServer(&fakeAppointmentsService{
		slotsFn: func(ctx context.Context, in appointments.AvailabilityInput, anyStaff bool) ([]string, error) {
			gotAny, gotExempt = anyStaff, in.ExemptAppointmentID
			return nil, nil
		},
	}, &fakeShopsService{}, memory.New(), quietLogger())

	resp, err := srv.AvailableSlots(context.Background(), &AvailableSlotsRequest{ShopID: "s1", Date: "2026-01-05", AnyStaff: true, ExemptAppointmentID: exempt.String()})
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	if !gotAny || gotExempt != exempt {
		t.Fatalf("anyStaff=%v exempt=%s", gotAny, gotExempt)
	}
	if resp.Slots == nil || len(resp.Slots) != 0 {
		t.Fatalf("slots = %#v, want empty list", resp.Slots)
	}
}

func TestMarkNotificationRead_OtherRecipientIsNotFound(t *testing.T) {
	notes := memory.New()
	ctx := context.Background()
	if err := notes.Enqueue(ctx, domain.Notification{Type: domain.NotificationBarberJoin, RecipientID: "a", Message: "m"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	list, _ := notes.ListForRecipient(ctx, "a")

	srv := NewServer(&fakeAppointmentsService{}, &fakeShopsService{}, notes, quietLogger())
	_, err := srv.MarkNotificationRead(ctx, &MarkNotificationReadRequest{RecipientID: "b", NotificationID: list[0].ID.String()})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %s, want %s", status.Code(err), codes.NotFound)
	}
	if _, err := srv.MarkNotificationRead(ctx, &MarkNotificationReadRequest{RecipientID: "a", NotificationID: list[0].ID.String()}); err != nil {
		t.Fatalf("MarkNotificationRead error: %v", err)
	}
}

func TestParseActor(t *testing.T) {
	cases := map[string]domain.Role{
		"":        domain.RoleClient,
		"client":  domain.RoleClient,
		" Barber": domain.RoleBarber,
		"ADMIN":   domain.RoleAdmin,
	}
	for in, want := range cases {
		got, err := parseActor(in)
		if err != nil || got != want {
			t.Fatalf("parseActor(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := parseActor("owner"); err == nil {
		t.Fatalf("expected error")
	}
}
