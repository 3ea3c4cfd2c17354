package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/notify"
	"barberbook/backend/internal/service/appointments"
	"barberbook/backend/internal/service/shops"
	"barberbook/backend/internal/service/validation"
	"barberbook/backend/internal/store"
)

type Server struct {
	appts  appointmentsService
	shops  shopsService
	inbox  store.NotificationInbox
	outbox store.NotificationOutbox
	log    *slog.Logger
}

var _ SchedulingServer = (*Server)(nil)

type appointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	Reschedule(ctx context.Context, in appointments.RescheduleInput) (domain.Appointment, error)
	SetStatus(ctx context.Context, appointmentID uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
	Delete(ctx context.Context, appointmentID uuid.UUID) error
	Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	ListForShop(ctx context.Context, shopID string) ([]domain.Appointment, error)
	ListForClient(ctx context.Context, clientID string) ([]domain.Appointment, error)
	ListForStaff(ctx context.Context, staffID string) ([]domain.Appointment, error)
	AvailableSlots(ctx context.Context, in appointments.AvailabilityInput) ([]string, error)
	AvailableSlotsAnyStaff(ctx context.Context, in appointments.AvailabilityInput) ([]string, error)
}

type shopsService interface {
	Create(ctx context.Context, in shops.CreateInput) (domain.Shop, error)
	Get(ctx context.Context, shopID string) (domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
	UpdateHours(ctx context.Context, in shops.HoursInput) (domain.Shop, error)
	UpdateProfile(ctx context.Context, in shops.ProfileInput) (domain.Shop, error)
	SaveSchedule(ctx context.Context, shopID, actorID string, slots []domain.TimeSlot) (domain.Shop, error)
	SetActive(ctx context.Context, shopID, actorID string, active bool) (domain.Shop, error)
	Join(ctx context.Context, joinCode, barberID string) (domain.Shop, error)
	Leave(ctx context.Context, shopID, barberID string) (domain.Shop, error)
	TransferOwnership(ctx context.Context, shopID, actorID, newOwnerID string) (domain.Shop, error)
	Delete(ctx context.Context, shopID, actorID, reason string) error
	ListStaff(ctx context.Context, shopID string) ([]shops.StaffMember, error)
}

type notificationStore interface {
	store.NotificationInbox
	store.NotificationOutbox
}

func NewServer(appts appointmentsService, shopSvc shopsService, notes notificationStore, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		appts:  appts,
		shops:  shopSvc,
		inbox:  notes,
		outbox: notes,
		log:    log.With(slog.String("component", "grpc.scheduling")),
	}
}

func (s *Server) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := parseActor(req.Actor)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_actor"), slog.String("actor", req.Actor))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	appt, err := s.appts.Create(ctx, appointments.CreateInput{
		ShopID:      req.ShopID,
		ClientID:    req.ClientID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		StaffID:     req.StaffID,
		Date:        req.Date,
		Time:        req.Time,
	})
	if err != nil {
		return nil, s.fail(log.With(
			slog.String("shop_id", req.ShopID),
			slog.String("staff_id", req.StaffID),
			slog.String("date", req.Date),
			slog.String("time", req.Time),
		), err, "appointment create", "shop")
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("shop_id", appt.ShopID),
		slog.String("staff_id", appt.StaffID),
		slog.String("date", appt.Date),
		slog.String("time", appt.Time),
	)

	s.notify(ctx, log, notify.AppointmentCreated(appt, actor, s.ownerOf(ctx, appt.ShopID)))
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *Server) RescheduleAppointment(ctx context.Context, req *RescheduleAppointmentRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "RescheduleAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}
	actor, err := parseActor(req.Actor)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_actor"), slog.String("actor", req.Actor))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	log = log.With(slog.String("appointment_id", id.String()))

	prev, err := s.appts.Get(ctx, id)
	if err != nil {
		return nil, s.fail(log, err, "appointment lookup", "appointment")
	}
	appt, err := s.appts.Reschedule(ctx, appointments.RescheduleInput{AppointmentID: id, Date: req.Date, Time: req.Time})
	if err != nil {
		return nil, s.fail(log, err, "appointment reschedule", "appointment")
	}

	log.Info(
		"appointment rescheduled",
		slog.String("from", prev.Date+" "+prev.Time),
		slog.String("to", appt.Date+" "+appt.Time),
	)

	s.notify(ctx, log, notify.AppointmentRescheduled(prev, appt, actor, s.ownerOf(ctx, appt.ShopID)))
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *Server) SetAppointmentStatus(ctx context.Context, req *SetAppointmentStatusRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "SetAppointmentStatus"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}
	actor, err := parseActor(req.Actor)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_actor"), slog.String("actor", req.Actor))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	next := domain.AppointmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	log = log.With(slog.String("appointment_id", id.String()), slog.String("status", string(next)))

	prev, err := s.appts.Get(ctx, id)
	if err != nil {
		return nil, s.fail(log, err, "appointment lookup", "appointment")
	}
	appt, err := s.appts.SetStatus(ctx, id, next)
	if err != nil {
		return nil, s.fail(log, err, "appointment status update", "appointment")
	}

	log.Info("appointment status updated", slog.String("previous_status", string(prev.Status)))

	if next == domain.AppointmentStatusCancelled && prev.Active() {
		s.notify(ctx, log, notify.AppointmentCancelled(appt, actor, s.ownerOf(ctx, appt.ShopID), strings.TrimSpace(req.Reason)))
	}
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *Server) DeleteAppointment(ctx context.Context, req *AppointmentIDRequest) (*Empty, error) {
	log := s.log.With(slog.String("rpc", "DeleteAppointment"))

	id, err := appointmentID(req)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, err
	}
	log = log.With(slog.String("appointment_id", id.String()))

	if err := s.appts.Delete(ctx, id); err != nil {
		return nil, s.fail(log, err, "appointment delete", "appointment")
	}

	log.Info("appointment deleted")
	return &Empty{}, nil
}

func (s *Server) GetAppointment(ctx context.Context, req *AppointmentIDRequest) (*AppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "GetAppointment"))

	id, err := appointmentID(req)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, err
	}
	appt, err := s.appts.Get(ctx, id)
	if err != nil {
		return nil, s.fail(log.With(slog.String("appointment_id", id.String())), err, "appointment get", "appointment")
	}
	return &AppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *Server) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAppointments"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var (
		appts []domain.Appointment
		err   error
	)
	switch {
	case req.ShopID != "" && req.ClientID == "" && req.StaffID == "":
		appts, err = s.appts.ListForShop(ctx, req.ShopID)
	case req.ClientID != "" && req.ShopID == "" && req.StaffID == "":
		appts, err = s.appts.ListForClient(ctx, req.ClientID)
	case req.StaffID != "" && req.ShopID == "" && req.ClientID == "":
		appts, err = s.appts.ListForStaff(ctx, req.StaffID)
	default:
		log.Warn("invalid request", slog.String("reason", "ambiguous_filter"))
		return nil, status.Error(codes.InvalidArgument, "exactly one of shop_id, client_id or staff_id is required")
	}
	if err != nil {
		return nil, s.fail(log, err, "appointments list", "appointments")
	}

	log.Debug(
		"appointments listed",
		slog.String("shop_id", req.ShopID),
		slog.String("client_id", req.ClientID),
		slog.String("staff_id", req.StaffID),
		slog.Int("count", len(appts)),
	)
	return &ListAppointmentsResponse{Appointments: toWireAppointments(appts)}, nil
}

func (s *Server) AvailableSlots(ctx context.Context, req *AvailableSlotsRequest) (*AvailableSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "AvailableSlots"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	in := appointments.AvailabilityInput{ShopID: req.ShopID, Date: req.Date, StaffID: req.StaffID}
	if req.ExemptAppointmentID != "" {
		id, err := uuid.Parse(req.ExemptAppointmentID)
		if err != nil {
			log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
			return nil, status.Error(codes.InvalidArgument, "exempt_appointment_id must be a UUID")
		}
		in.ExemptAppointmentID = id
	}

	var (
		slots []string
		err   error
	)
	if req.AnyStaff {
		slots, err = s.appts.AvailableSlotsAnyStaff(ctx, in)
	} else {
		slots, err = s.appts.AvailableSlots(ctx, in)
	}
	if err != nil {
		return nil, s.fail(log.With(slog.String("shop_id", req.ShopID), slog.String("date", req.Date)), err, "available slots", "shop")
	}
	if slots == nil {
		slots = []string{}
	}

	log.Debug(
		"available slots listed",
		slog.String("shop_id", req.ShopID),
		slog.String("date", req.Date),
		slog.Bool("any_staff", req.AnyStaff),
		slog.Int("count", len(slots)),
	)
	return &AvailableSlotsResponse{Slots: slots}, nil
}

func appointmentID(req *AppointmentIDRequest) (uuid.UUID, error) {
	if req == nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}
	return id, nil
}

func parseActor(raw string) (domain.Role, error) {
	switch r := domain.Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return domain.RoleClient, nil
	case domain.RoleClient, domain.RoleBarber, domain.RoleAdmin:
		return r, nil
	default:
		return "", errors.New("actor must be one of: client barber admin")
	}
}

// ownerOf returns "" when the shop cannot be read; the notification then falls back to no recipient.
func (s *Server) ownerOf(ctx context.Context, shopID string) string {
	shop, err := s.shops.Get(ctx, shopID)
	if err != nil {
		return ""
	}
	return shop.OwnerID
}

// notify enqueues after a write has committed. Failures are logged, never surfaced to the caller.
func (s *Server) notify(ctx context.Context, log *slog.Logger, notes []domain.Notification) {
	for _, n := range notes {
		if err := s.outbox.Enqueue(ctx, n); err != nil {
			log.Error("notification enqueue failed",
				slog.Any("err", err),
				slog.String("type", string(n.Type)),
				slog.String("recipient_id", n.RecipientID),
			)
		}
	}
}

// fail maps service errors to gRPC status codes. subject names the missing resource for NotFound.
func (s *Server) fail(log *slog.Logger, err error, op, subject string) error {
	var vErr *validation.Error
	switch {
	case errors.Is(err, store.ErrConflict):
		log.Info(op+" conflict", slog.Any("err", err))
		return status.Error(codes.FailedPrecondition, "That slot is already booked. Pick a different time.")
	case errors.Is(err, appointments.ErrInvalidConfiguration):
		log.Info(op+" rejected", slog.Any("err", err))
		return status.Error(codes.FailedPrecondition, "The shop is not taking bookings on that date.")
	case errors.Is(err, shops.ErrForbidden):
		log.Warn(op+" forbidden", slog.Any("err", err))
		return status.Error(codes.PermissionDenied, "not allowed")
	case errors.Is(err, store.ErrNotFound):
		log.Info(subject+" not found", slog.Any("err", err))
		return status.Error(codes.NotFound, subject+" not found")
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(op+" timed out", slog.Any("err", err))
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	default:
		log.Error(op+" failed", slog.Any("err", err))
		return status.Error(codes.Internal, "internal error")
	}
}
