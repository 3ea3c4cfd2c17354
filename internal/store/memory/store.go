// Package memory is an in-process implementation of the store interfaces. Writes to one shop's
// appointment book are serialized by a per-shop mutex.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	appointments  map[uuid.UUID]domain.Appointment
	shops         map[string]domain.Shop
	accounts      map[string]domain.Account
	notifications []domain.Notification

	locksMu   sync.Mutex
	shopLocks map[string]*sync.Mutex
}

func New() *Store {
	return &Store{
		appointments: make(map[uuid.UUID]domain.Appointment),
		shops:        make(map[string]domain.Shop),
		accounts:     make(map[string]domain.Account),
		shopLocks:    make(map[string]*sync.Mutex),
	}
}

// PutAccount seeds the account directory.
func (s *Store) PutAccount(acc domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.ID] = acc
}

func (s *Store) shopLock(shopID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.shopLocks[shopID]
	if !ok {
		l = &sync.Mutex{}
		s.shopLocks[shopID] = l
	}
	return l
}

func (s *Store) Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[appointmentID]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListByShop(ctx context.Context, shopID string) ([]domain.Appointment, error) {
	return s.filter(func(a domain.Appointment) bool { return a.ShopID == shopID }), nil
}

func (s *Store) ListByClient(ctx context.Context, clientID string) ([]domain.Appointment, error) {
	return s.filter(func(a domain.Appointment) bool { return a.ClientID == clientID }), nil
}

func (s *Store) ListByStaff(ctx context.Context, staffID string, shopIDs []string) ([]domain.Appointment, error) {
	inShop := make(map[string]struct{}, len(shopIDs))
	for _, id := range shopIDs {
		inShop[id] = struct{}{}
	}
	return s.filter(func(a domain.Appointment) bool {
		if a.StaffID != "" {
			return a.StaffID == staffID
		}
		_, ok := inShop[a.ShopID]
		return ok
	}), nil
}

func (s *Store) ListForDate(ctx context.Context, shopID, date string) ([]domain.Appointment, error) {
	return s.filter(func(a domain.Appointment) bool { return a.ShopID == shopID && a.Date == date }), nil
}

func (s *Store) filter(keep func(domain.Appointment) bool) []domain.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Appointment
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// InShopTransaction holds the shop's mutex for the duration of fn. Writes are applied immediately,
// so fn must validate before it writes.
func (s *Store) InShopTransaction(ctx context.Context, shopID string, fn func(ctx context.Context, tx store.ShopTx) error) error {
	l := s.shopLock(shopID)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, shopTx{s: s, shopID: shopID})
}

type shopTx struct {
	s      *Store
	shopID string
}

func (t shopTx) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	a, err := t.s.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if a.ShopID != t.shopID {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (t shopTx) ListAppointments(ctx context.Context, date string) ([]domain.Appointment, error) {
	return t.s.ListForDate(ctx, t.shopID, date)
}

func (t shopTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.ShopID != t.shopID {
		return domain.Appointment{}, errors.New("appointment belongs to another shop")
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}
	if _, exists := t.s.appointments[appt.ID]; exists {
		return domain.Appointment{}, errors.New("duplicate appointment id")
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	if t.s.slotTakenLocked(appt) {
		return domain.Appointment{}, store.ErrConflict
	}
	t.s.appointments[appt.ID] = appt
	return appt, nil
}

func (t shopTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	cur, ok := t.s.appointments[appt.ID]
	if !ok || cur.ShopID != t.shopID {
		return domain.Appointment{}, store.ErrNotFound
	}
	cur.StaffID = appt.StaffID
	cur.Date = appt.Date
	cur.Time = appt.Time
	cur.Status = appt.Status
	cur.UpdatedAt = appt.UpdatedAt
	if t.s.slotTakenLocked(cur) {
		return domain.Appointment{}, store.ErrConflict
	}
	t.s.appointments[cur.ID] = cur
	return cur, nil
}

func (t shopTx) DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	cur, ok := t.s.appointments[appointmentID]
	if !ok || cur.ShopID != t.shopID {
		return store.ErrNotFound
	}
	delete(t.s.appointments, appointmentID)
	return nil
}

// slotTakenLocked mirrors the partial unique indexes of the SQL schema: one active appointment per
// staff member per slot, and one active unassigned appointment per slot.
func (s *Store) slotTakenLocked(appt domain.Appointment) bool {
	if !appt.Active() {
		return false
	}
	for id, a := range s.appointments {
		if id == appt.ID || !a.Active() {
			continue
		}
		if a.ShopID == appt.ShopID && a.Date == appt.Date && a.Time == appt.Time && a.StaffID == appt.StaffID {
			return true
		}
	}
	return false
}

func (s *Store) FindShop(ctx context.Context, shopID string) (domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shop, ok := s.shops[shopID]
	if !ok {
		return domain.Shop{}, store.ErrNotFound
	}
	return cloneShop(shop), nil
}

func (s *Store) FindShopByJoinCode(ctx context.Context, code string) (domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, shop := range s.shops {
		if shop.JoinCode == code {
			return cloneShop(shop), nil
		}
	}
	return domain.Shop{}, store.ErrNotFound
}

func (s *Store) ListShops(ctx context.Context) ([]domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Shop, 0, len(s.shops))
	for _, shop := range s.shops {
		out = append(out, cloneShop(shop))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateShop(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.shops[shop.ID]; exists {
		return domain.Shop{}, errors.New("duplicate shop id")
	}
	now := time.Now().UTC()
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = now
	}
	if shop.UpdatedAt.IsZero() {
		shop.UpdatedAt = now
	}
	s.shops[shop.ID] = cloneShop(shop)
	return shop, nil
}

func (s *Store) UpdateShop(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.shops[shop.ID]
	if !ok {
		return domain.Shop{}, store.ErrNotFound
	}
	shop.CreatedAt = cur.CreatedAt
	shop.UpdatedAt = time.Now().UTC()
	s.shops[shop.ID] = cloneShop(shop)
	return shop, nil
}

func (s *Store) DeleteShop(ctx context.Context, shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[shopID]; !ok {
		return store.ErrNotFound
	}
	delete(s.shops, shopID)
	return nil
}

func cloneShop(shop domain.Shop) domain.Shop {
	shop.StaffIDs = append([]string(nil), shop.StaffIDs...)
	shop.WorkingDays = append([]domain.Weekday(nil), shop.WorkingDays...)
	shop.AvailableTimeSlots = append([]domain.TimeSlot(nil), shop.AvailableTimeSlots...)
	return shop
}

func (s *Store) FindAccount(ctx context.Context, accountID string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return acc, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Enqueue(ctx context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
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
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *Store) ListForRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].RecipientID == recipientID {
			out = append(out, s.notifications[i])
		}
	}
	return out, nil
}

func (s *Store) MarkRead(ctx context.Context, recipientID string, notificationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) MarkAllRead(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].RecipientID == recipientID {
			s.notifications[i].Read = true
		}
	}
	return nil
}

func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.PublishedAt != nil {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for i := range s.notifications {
		if _, ok := want[s.notifications[i].ID]; ok {
			s.notifications[i].PublishedAt = &now
		}
	}
	return nil
}
