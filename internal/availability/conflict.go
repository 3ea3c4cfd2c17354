package availability

import (
	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

// Slot identifies a shop time slot, optionally scoped to one staff member.
type Slot struct {
	ShopID  string
	Date    string
	Time    string
	StaffID string
}

// IsFree reports whether slot is unoccupied in appts, ignoring cancelled appointments and the
// appointment whose id equals exempt.
//
// A staff-scoped slot only collides with appointments assigned to that staff member. An unscoped slot
// collides with every active appointment at that shop, date and time, assigned or not.
func IsFree(appts []domain.Appointment, slot Slot, exempt uuid.UUID) bool {
	for i := range appts {
		a := &appts[i]
		if exempt != uuid.Nil && a.ID == exempt {
			continue
		}
		if a.ShopID != slot.ShopID || a.Date != slot.Date || a.Time != slot.Time {
			continue
		}
		if !a.Active() {
			continue
		}
		if slot.StaffID != "" && a.StaffID != slot.StaffID {
			continue
		}
		return false
	}
	return true
}
