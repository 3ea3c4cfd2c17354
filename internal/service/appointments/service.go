package appointments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"barberbook/backend/internal/availability"
	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/service/validation"
	"barberbook/backend/internal/store"
)

// ErrInvalidConfiguration is returned by writes against a shop that is blocked or offers no slots on
// the requested date. Read paths report the same situation as an empty slot list.
var ErrInvalidConfiguration = errors.New("shop has no bookable slots on that date")

type ValidationError = validation.Error

type Service struct {
	appts    store.AppointmentRepository
	shops    store.ShopDirectory
	accounts store.AccountDirectory
	validate *validator.Validate
	now      func() time.Time
}

func NewService(appts store.AppointmentRepository, shops store.ShopDirectory, accounts store.AccountDirectory) *Service {
	return &Service{
		appts:    appts,
		shops:    shops,
		accounts: accounts,
		validate: validation.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	ShopID      string `name:"shop_id" validate:"required"`
	ClientID    string `name:"client_id" validate:"required"`
	ClientName  string `name:"client_name"`
	ClientPhone string `name:"client_phone"`
	StaffID     string `name:"staff_id"`
	Date        string `name:"date" validate:"required,date"`
	Time        string `name:"time" validate:"required,clock"`
}

// Create books a slot. It is the only place new appointments are minted.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	in.ShopID = strings.TrimSpace(in.ShopID)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.StaffID = strings.TrimSpace(in.StaffID)
	if err := validation.Check(s.validate, in); err != nil {
		return domain.Appointment{}, err
	}

	shop, err := s.findShop(ctx, in.ShopID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if in.StaffID != "" && !shop.HasStaff(in.StaffID) {
		return domain.Appointment{}, validation.Errorf("staff_id is not a member of this shop")
	}
	if err := checkBookable(shop, in.Date, in.Time); err != nil {
		return domain.Appointment{}, err
	}

	clientName, clientPhone := strings.TrimSpace(in.ClientName), strings.TrimSpace(in.ClientPhone)
	if clientName == "" || clientPhone == "" {
		acc, err := s.accounts.FindAccount(ctx, in.ClientID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Appointment{}, validation.Errorf("client_id does not match an account")
			}
			return domain.Appointment{}, err
		}
		if clientName == "" {
			clientName = acc.Name
		}
		if clientPhone == "" {
			clientPhone = acc.Phone
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Appointment{}, err
	}

	appt := domain.Appointment{
		ID:          id,
		ShopID:      shop.ID,
		ShopName:    shop.Name,
		ClientID:    in.ClientID,
		ClientName:  clientName,
		ClientPhone: clientPhone,
		StaffID:     in.StaffID,
		Date:        in.Date,
		Time:        in.Time,
		Status:      domain.AppointmentStatusConfirmed,
		CreatedAt:   s.now(),
	}

	var out domain.Appointment
	err = s.appts.InShopTransaction(ctx, shop.ID, func(ctx context.Context, tx store.ShopTx) error {
		booked, err := tx.ListAppointments(ctx, appt.Date)
		if err != nil {
			return err
		}
		if !availability.IsFree(booked, slotOf(appt), uuid.Nil) {
			return store.ErrConflict
		}
		out, err = tx.CreateAppointment(ctx, appt)
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

type RescheduleInput struct {
	AppointmentID uuid.UUID
	Date          *string `name:"date" validate:"omitempty,date"`
	Time          *string `name:"time" validate:"omitempty,clock"`
}

// Reschedule moves an appointment to a new date and/or time, keeping its staff assignment.
// Cancelled appointments are moved without any availability check, so they may land on a closed day
// or an off-grid time. Reopening one later with SetStatus does not re-check the shop's hours either.
func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (domain.Appointment, error) {
	if in.AppointmentID == uuid.Nil {
		return domain.Appointment{}, validation.Errorf("appointment_id is required")
	}
	if err := validation.Check(s.validate, in); err != nil {
		return domain.Appointment{}, err
	}

	existing, err := s.appts.Get(ctx, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	err = s.appts.InShopTransaction(ctx, existing.ShopID, func(ctx context.Context, tx store.ShopTx) error {
		cur, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return err
		}

		next := cur
		if in.Date != nil {
			next.Date = *in.Date
		}
		if in.Time != nil {
			next.Time = *in.Time
		}
		moved := next.Date != cur.Date || next.Time != cur.Time

		if moved && cur.Active() {
			shop, err := s.findShop(ctx, cur.ShopID)
			if err != nil {
				return err
			}
			if err := checkBookable(shop, next.Date, next.Time); err != nil {
				return err
			}
			booked, err := tx.ListAppointments(ctx, next.Date)
			if err != nil {
				return err
			}
			if !availability.IsFree(booked, slotOf(next), cur.ID) {
				return store.ErrConflict
			}
		}

		next.UpdatedAt = s.now()
		out, err = tx.UpdateAppointment(ctx, next)
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// SetStatus overwrites the status of an appointment. Any status may follow any other, including
// reopening a cancelled appointment. A reopen still has to find its slot free: it fails with
// store.ErrConflict when another active booking took the slot meanwhile, using the same staffed and
// unassigned scoping as Create. Shop hours are not re-checked.
func (s *Service) SetStatus(ctx context.Context, appointmentID uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if appointmentID == uuid.Nil {
		return domain.Appointment{}, validation.Errorf("appointment_id is required")
	}
	if !status.Valid() {
		return domain.Appointment{}, validation.Errorf("status must be one of: pending confirmed completed cancelled")
	}

	existing, err := s.appts.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	err = s.appts.InShopTransaction(ctx, existing.ShopID, func(ctx context.Context, tx store.ShopTx) error {
		cur, err := tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !cur.Active() && status != domain.AppointmentStatusCancelled {
			booked, err := tx.ListAppointments(ctx, cur.Date)
			if err != nil {
				return err
			}
			if !availability.IsFree(booked, slotOf(cur), cur.ID) {
				return store.ErrConflict
			}
		}
		cur.Status = status
		cur.UpdatedAt = s.now()
		out, err = tx.UpdateAppointment(ctx, cur)
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	return s.SetStatus(ctx, appointmentID, domain.AppointmentStatusCancelled)
}

// Delete purges the record. Prefer Cancel when an audit trail is wanted.
func (s *Service) Delete(ctx context.Context, appointmentID uuid.UUID) error {
	if appointmentID == uuid.Nil {
		return validation.Errorf("appointment_id is required")
	}

	existing, err := s.appts.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	return s.appts.InShopTransaction(ctx, existing.ShopID, func(ctx context.Context, tx store.ShopTx) error {
		return tx.DeleteAppointment(ctx, appointmentID)
	})
}

func (s *Service) Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	if appointmentID == uuid.Nil {
		return domain.Appointment{}, validation.Errorf("appointment_id is required")
	}
	return s.appts.Get(ctx, appointmentID)
}

func (s *Service) ListForShop(ctx context.Context, shopID string) ([]domain.Appointment, error) {
	if shopID == "" {
		return nil, validation.Errorf("shop_id is required")
	}
	return s.appts.ListByShop(ctx, shopID)
}

func (s *Service) ListForClient(ctx context.Context, clientID string) ([]domain.Appointment, error) {
	if clientID == "" {
		return nil, validation.Errorf("client_id is required")
	}
	return s.appts.ListByClient(ctx, clientID)
}

// ListForStaff returns appointments assigned to staffID plus unassigned ones at shops where
// staffID works.
func (s *Service) ListForStaff(ctx context.Context, staffID string) ([]domain.Appointment, error) {
	if staffID == "" {
		return nil, validation.Errorf("staff_id is required")
	}
	shops, err := s.shops.ListShops(ctx)
	if err != nil {
		return nil, err
	}
	var shopIDs []string
	for _, shop := range shops {
		if shop.HasStaff(staffID) {
			shopIDs = append(shopIDs, shop.ID)
		}
	}
	return s.appts.ListByStaff(ctx, staffID, shopIDs)
}

type AvailabilityInput struct {
	ShopID  string `name:"shop_id" validate:"required"`
	Date    string `name:"date" validate:"required,date"`
	StaffID string `name:"staff_id"`
	// ExemptAppointmentID keeps the slot of the appointment being edited selectable.
	ExemptAppointmentID uuid.UUID
}

// AvailableSlots answers "which slots are free on Date" for one staff member, or for the
// unassigned bucket when StaffID is empty.
func (s *Service) AvailableSlots(ctx context.Context, in AvailabilityInput) ([]string, error) {
	return s.available(ctx, in, false)
}

// AvailableSlotsAnyStaff keeps a slot when at least one of the shop's staff members is free.
func (s *Service) AvailableSlotsAnyStaff(ctx context.Context, in AvailabilityInput) ([]string, error) {
	return s.available(ctx, in, true)
}

func (s *Service) available(ctx context.Context, in AvailabilityInput, anyStaff bool) ([]string, error) {
	in.ShopID = strings.TrimSpace(in.ShopID)
	in.StaffID = strings.TrimSpace(in.StaffID)
	if err := validation.Check(s.validate, in); err != nil {
		return nil, err
	}

	shop, err := s.findShop(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}
	if !shop.IsActive {
		return []string{}, nil
	}
	if !anyStaff && in.StaffID != "" && !shop.HasStaff(in.StaffID) {
		return nil, validation.Errorf("staff_id is not a member of this shop")
	}

	day, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, validation.Errorf("date must be a YYYY-MM-DD date")
	}
	booked, err := s.appts.ListForDate(ctx, shop.ID, in.Date)
	if err != nil {
		return nil, err
	}

	q := availability.Query{Day: day, StaffID: in.StaffID, ExemptID: in.ExemptAppointmentID}
	if anyStaff {
		return availability.AvailableSlotsAnyStaff(shop, booked, q), nil
	}
	return availability.AvailableSlots(shop, booked, q), nil
}

func (s *Service) findShop(ctx context.Context, shopID string) (domain.Shop, error) {
	shop, err := s.shops.FindShop(ctx, shopID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Shop{}, fmt.Errorf("shop %s: %w", shopID, store.ErrNotFound)
		}
		return domain.Shop{}, err
	}
	return shop, nil
}

// checkBookable requires date/clock to be one of the shop's resolved slots.
func checkBookable(shop domain.Shop, date, clock string) error {
	if !shop.IsActive {
		return fmt.Errorf("shop %s is not accepting bookings: %w", shop.ID, ErrInvalidConfiguration)
	}
	day, err := domain.ParseDate(date)
	if err != nil {
		return validation.Errorf("date must be a YYYY-MM-DD date")
	}
	slots := availability.ResolveSlots(shop, day)
	if len(slots) == 0 {
		return fmt.Errorf("shop %s on %s: %w", shop.ID, date, ErrInvalidConfiguration)
	}
	if !slices.Contains(slots, clock) {
		return validation.Errorf("time is not a bookable slot for this shop")
	}
	return nil
}

func slotOf(a domain.Appointment) availability.Slot {
	return availability.Slot{ShopID: a.ShopID, Date: a.Date, Time: a.Time, StaffID: a.StaffID}
}
