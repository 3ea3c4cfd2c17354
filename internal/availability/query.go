package availability

import (
	"time"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

// Query describes an availability lookup. ExemptID keeps the slot held by the appointment
// being edited selectable.
type Query struct {
	Day      time.Time
	StaffID  string
	ExemptID uuid.UUID
}

// AvailableSlots returns the resolved slots of shop on q.Day that are free for q.StaffID.
// An empty StaffID checks the unassigned bucket, which collides with every booking at that time.
func AvailableSlots(shop domain.Shop, appts []domain.Appointment, q Query) []string {
	date := domain.FormatDate(q.Day)
	slots := ResolveSlots(shop, q.Day)

	out := make([]string, 0, len(slots))
	for _, t := range slots {
		if IsFree(appts, Slot{ShopID: shop.ID, Date: date, Time: t, StaffID: q.StaffID}, q.ExemptID) {
			out = append(out, t)
		}
	}
	return out
}

// AvailableSlotsAnyStaff returns the resolved slots of shop on q.Day where at least one staff member
// is free. q.StaffID is ignored. A shop without staff falls back to the unassigned check.
func AvailableSlotsAnyStaff(shop domain.Shop, appts []domain.Appointment, q Query) []string {
	if len(shop.StaffIDs) == 0 {
		q.StaffID = ""
		return AvailableSlots(shop, appts, q)
	}

	date := domain.FormatDate(q.Day)
	slots := ResolveSlots(shop, q.Day)

	out := make([]string, 0, len(slots))
	for _, t := range slots {
		for _, staffID := range shop.StaffIDs {
			if IsFree(appts, Slot{ShopID: shop.ID, Date: date, Time: t, StaffID: staffID}, q.ExemptID) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
