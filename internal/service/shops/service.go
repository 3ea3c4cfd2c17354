package shops

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"barberbook/backend/internal/availability"
	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/notify"
	"barberbook/backend/internal/service/validation"
	"barberbook/backend/internal/store"
)

var ErrForbidden = errors.New("not allowed to modify this shop")

// Join codes avoid 0/O and 1/I so they can be read out loud.
const (
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeLength   = 8
)

type Service struct {
	shops    store.ShopDirectory
	accounts store.AccountDirectory
	outbox   store.NotificationOutbox
	validate *validator.Validate

	// mu serializes read-modify-write cycles on shop records within this process.
	mu sync.Mutex

	newJoinCode func() (string, error)
}

func NewService(shops store.ShopDirectory, accounts store.AccountDirectory, outbox store.NotificationOutbox) *Service {
	return &Service{
		shops:       shops,
		accounts:    accounts,
		outbox:      outbox,
		validate:    validation.New(),
		newJoinCode: randomJoinCode,
	}
}

type CreateInput struct {
	OwnerID     string   `name:"owner_id" validate:"required"`
	Name        string   `name:"name" validate:"required"`
	Description string   `name:"description"`
	Phone       string   `name:"phone"`
	Address     string   `name:"address"`
	City        string   `name:"city"`
	WorkingDays []string `name:"working_days"`
	OpeningTime string   `name:"opening_time" validate:"required,clock"`
	ClosingTime string   `name:"closing_time" validate:"required,clock"`
}

// Create registers a shop owned by OwnerID, who also becomes its first staff member.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Shop, error) {
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(s.validate, in); err != nil {
		return domain.Shop{}, err
	}
	days, err := parseHours(in.WorkingDays, in.OpeningTime, in.ClosingTime)
	if err != nil {
		return domain.Shop{}, err
	}
	if _, err := s.findAccount(ctx, in.OwnerID, "owner_id"); err != nil {
		return domain.Shop{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Shop{}, err
	}
	code, err := s.newJoinCode()
	if err != nil {
		return domain.Shop{}, err
	}

	return s.shops.CreateShop(ctx, domain.Shop{
		ID:          id.String(),
		Name:        in.Name,
		Description: in.Description,
		Phone:       in.Phone,
		Address:     in.Address,
		City:        in.City,
		OwnerID:     in.OwnerID,
		StaffIDs:    []string{in.OwnerID},
		JoinCode:    code,
		WorkingDays: days,
		OpeningTime: in.OpeningTime,
		ClosingTime: in.ClosingTime,
		IsActive:    true,
	})
}

func (s *Service) Get(ctx context.Context, shopID string) (domain.Shop, error) {
	if shopID == "" {
		return domain.Shop{}, validation.Errorf("shop_id is required")
	}
	return s.shops.FindShop(ctx, shopID)
}

func (s *Service) List(ctx context.Context) ([]domain.Shop, error) {
	return s.shops.ListShops(ctx)
}

type HoursInput struct {
	ShopID      string   `name:"shop_id" validate:"required"`
	ActorID     string   `name:"actor_id" validate:"required"`
	WorkingDays []string `name:"working_days"`
	OpeningTime string   `name:"opening_time" validate:"required,clock"`
	ClosingTime string   `name:"closing_time" validate:"required,clock"`
}

// UpdateHours replaces the working days and the opening/closing window.
func (s *Service) UpdateHours(ctx context.Context, in HoursInput) (domain.Shop, error) {
	if err := validation.Check(s.validate, in); err != nil {
		return domain.Shop{}, err
	}
	days, err := parseHours(in.WorkingDays, in.OpeningTime, in.ClosingTime)
	if err != nil {
		return domain.Shop{}, err
	}
	if _, err := s.findAccount(ctx, in.ActorID, "actor_id"); err != nil {
		return domain.Shop{}, err
	}
	return s.mutate(ctx, in.ShopID, func(shop *domain.Shop) error {
		if !shop.HasStaff(in.ActorID) {
			return ErrForbidden
		}
		shop.WorkingDays = days
		shop.OpeningTime = in.OpeningTime
		shop.ClosingTime = in.ClosingTime
		return nil
	})
}

type ProfileInput struct {
	ShopID      string `name:"shop_id" validate:"required"`
	ActorID     string `name:"actor_id" validate:"required"`
	Name        string `name:"name" validate:"required"`
	Description string `name:"description"`
	Phone       string `name:"phone"`
	Address     string `name:"address"`
	City        string `name:"city"`
}

// UpdateProfile replaces the descriptive fields of a shop. Staff members and admins may edit it.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileInput) (domain.Shop, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Check(s.validate, in); err != nil {
		return domain.Shop{}, err
	}
	actor, err := s.findAccount(ctx, in.ActorID, "actor_id")
	if err != nil {
		return domain.Shop{}, err
	}
	return s.mutate(ctx, in.ShopID, func(shop *domain.Shop) error {
		if !shop.HasStaff(in.ActorID) && actor.Role != domain.RoleAdmin {
			return ErrForbidden
		}
		shop.Name = in.Name
		shop.Description = strings.TrimSpace(in.Description)
		shop.Phone = strings.TrimSpace(in.Phone)
		shop.Address = strings.TrimSpace(in.Address)
		shop.City = strings.TrimSpace(in.City)
		return nil
	})
}

// SaveSchedule stores custom slots sorted by time. An empty list reverts the shop to the hourly grid.
func (s *Service) SaveSchedule(ctx context.Context, shopID, actorID string, slots []domain.TimeSlot) (domain.Shop, error) {
	if shopID == "" {
		return domain.Shop{}, validation.Errorf("shop_id is required")
	}
	seen := make(map[string]struct{}, len(slots))
	for i, slot := range slots {
		if _, err := domain.ParseClock(slot.Time); err != nil {
			return domain.Shop{}, validation.Errorf("slots[%d].time must be an HH:MM time", i)
		}
		if slot.DurationMinutes < 0 {
			return domain.Shop{}, validation.Errorf("slots[%d].duration must not be negative", i)
		}
		if _, dup := seen[slot.Time]; dup {
			return domain.Shop{}, validation.Errorf("slots[%d].time %s is listed twice", i, slot.Time)
		}
		seen[slot.Time] = struct{}{}
	}

	sorted := availability.SortTimeSlots(slots)
	for i := range sorted {
		if sorted[i].DurationMinutes == 0 {
			sorted[i].DurationMinutes = availability.GridStepMinutes
		}
	}
	if _, err := s.findAccount(ctx, actorID, "actor_id"); err != nil {
		return domain.Shop{}, err
	}
	return s.mutate(ctx, shopID, func(shop *domain.Shop) error {
		if !shop.HasStaff(actorID) {
			return ErrForbidden
		}
		shop.AvailableTimeSlots = sorted
		return nil
	})
}

// SetActive blocks or unblocks a shop. Blocked shops take no new bookings.
func (s *Service) SetActive(ctx context.Context, shopID, actorID string, active bool) (domain.Shop, error) {
	actor, err := s.findAccount(ctx, actorID, "actor_id")
	if err != nil {
		return domain.Shop{}, err
	}
	if actor.Role != domain.RoleAdmin {
		return domain.Shop{}, ErrForbidden
	}
	return s.mutate(ctx, shopID, func(shop *domain.Shop) error {
		shop.IsActive = active
		return nil
	})
}

func (s *Service) Join(ctx context.Context, joinCode, barberID string) (domain.Shop, error) {
	joinCode = strings.ToUpper(strings.TrimSpace(joinCode))
	if joinCode == "" {
		return domain.Shop{}, validation.Errorf("join_code is required")
	}
	barber, err := s.findAccount(ctx, barberID, "barber_id")
	if err != nil {
		return domain.Shop{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shop, err := s.shops.FindShopByJoinCode(ctx, joinCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Shop{}, validation.Errorf("join_code is not valid")
		}
		return domain.Shop{}, err
	}
	if shop.HasStaff(barberID) {
		return domain.Shop{}, validation.Errorf("already a member of this shop")
	}
	shop.StaffIDs = append(shop.StaffIDs, barberID)

	updated, err := s.shops.UpdateShop(ctx, shop)
	if err != nil {
		return domain.Shop{}, err
	}
	return updated, s.enqueue(ctx, notify.BarberJoined(updated, barber.Name))
}

// Leave removes a staff member. The owner has to transfer ownership first.
func (s *Service) Leave(ctx context.Context, shopID, barberID string) (domain.Shop, error) {
	barber, err := s.findAccount(ctx, barberID, "barber_id")
	if err != nil {
		return domain.Shop{}, err
	}
	updated, err := s.mutate(ctx, shopID, func(shop *domain.Shop) error {
		if shop.OwnerID == barberID {
			return validation.Errorf("the owner cannot leave the shop")
		}
		if !shop.HasStaff(barberID) {
			return validation.Errorf("not a member of this shop")
		}
		shop.StaffIDs = slices.DeleteFunc(shop.StaffIDs, func(id string) bool { return id == barberID })
		return nil
	})
	if err != nil {
		return domain.Shop{}, err
	}
	return updated, s.enqueue(ctx, notify.BarberLeft(updated, barber.Name))
}

func (s *Service) TransferOwnership(ctx context.Context, shopID, actorID, newOwnerID string) (domain.Shop, error) {
	if newOwnerID == "" {
		return domain.Shop{}, validation.Errorf("new_owner_id is required")
	}
	actor, err := s.findAccount(ctx, actorID, "actor_id")
	if err != nil {
		return domain.Shop{}, err
	}
	updated, err := s.mutate(ctx, shopID, func(shop *domain.Shop) error {
		if shop.OwnerID != actorID && actor.Role != domain.RoleAdmin {
			return ErrForbidden
		}
		if !shop.HasStaff(newOwnerID) {
			return validation.Errorf("new_owner_id is not a member of this shop")
		}
		shop.OwnerID = newOwnerID
		return nil
	})
	if err != nil {
		return domain.Shop{}, err
	}
	return updated, s.enqueue(ctx, notify.OwnershipTransferred(updated, actor.Name))
}

// Delete removes the shop and tells the remaining staff why. Appointments are left in place.
func (s *Service) Delete(ctx context.Context, shopID, actorID, reason string) error {
	actor, err := s.findAccount(ctx, actorID, "actor_id")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shop, err := s.shops.FindShop(ctx, shopID)
	if err != nil {
		return err
	}
	if shop.OwnerID != actorID && actor.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	if err := s.shops.DeleteShop(ctx, shopID); err != nil {
		return err
	}
	return s.enqueue(ctx, notify.ShopDeleted(shop, actorID, strings.TrimSpace(reason)))
}

type StaffMember struct {
	ID      string
	Name    string
	Email   string
	IsOwner bool
}

// ListStaff resolves staff ids to display names. Ids with no account are listed with an empty name.
func (s *Service) ListStaff(ctx context.Context, shopID string) ([]StaffMember, error) {
	shop, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	out := make([]StaffMember, 0, len(shop.StaffIDs))
	for _, id := range shop.StaffIDs {
		m := StaffMember{ID: id, IsOwner: id == shop.OwnerID}
		acc, err := s.accounts.FindAccount(ctx, id)
		switch {
		case err == nil:
			m.Name, m.Email = acc.Name, acc.Email
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Service) mutate(ctx context.Context, shopID string, fn func(shop *domain.Shop) error) (domain.Shop, error) {
	if shopID == "" {
		return domain.Shop{}, validation.Errorf("shop_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shop, err := s.shops.FindShop(ctx, shopID)
	if err != nil {
		return domain.Shop{}, err
	}
	if err := fn(&shop); err != nil {
		return domain.Shop{}, err
	}
	return s.shops.UpdateShop(ctx, shop)
}

func (s *Service) findAccount(ctx context.Context, accountID, field string) (domain.Account, error) {
	if accountID == "" {
		return domain.Account{}, validation.Errorf("%s is required", field)
	}
	acc, err := s.accounts.FindAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, validation.Errorf("%s does not match an account", field)
		}
		return domain.Account{}, err
	}
	if acc.Status == domain.AccountStatusBlocked {
		return domain.Account{}, ErrForbidden
	}
	return acc, nil
}

func (s *Service) enqueue(ctx context.Context, notes []domain.Notification) error {
	for _, n := range notes {
		if err := s.outbox.Enqueue(ctx, n); err != nil {
			return fmt.Errorf("enqueue %s notification: %w", n.Type, err)
		}
	}
	return nil
}

func parseHours(names []string, opening, closing string) ([]domain.Weekday, error) {
	days, err := domain.ParseWeekdays(names)
	if err != nil {
		return nil, validation.Errorf("working_days: %v", err)
	}
	if domain.MustParseClock(opening) >= domain.MustParseClock(closing) {
		return nil, validation.Errorf("opening_time must be before closing_time")
	}
	return days, nil
}

func randomJoinCode() (string, error) {
	return gonanoid.Generate(joinCodeAlphabet, joinCodeLength)
}
