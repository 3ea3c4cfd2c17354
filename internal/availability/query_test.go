package availability

import (
	"slices"
	"testing"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

func TestAvailableSlots_UnassignedBookingRemovesSlot(t *testing.T) {
	shop := testShop()
	shop.ClosingTime = "11:00"
	shop.StaffIDs = nil

	got := AvailableSlots(shop, nil, Query{Day: monday})
	if !slices.Equal(got, []string{"09:00", "10:00"}) {
		t.Fatalf("slots = %v, want [09:00 10:00]", got)
	}

	appts := []domain.Appointment{
		appt("00000000-0000-0000-0000-000000000001", "", "09:00", domain.AppointmentStatusConfirmed),
	}
	got = AvailableSlots(shop, appts, Query{Day: monday})
	if !slices.Equal(got, []string{"10:00"}) {
		t.Fatalf("slots = %v, want [10:00]", got)
	}
}

func TestAvailableSlots_StaffScoped(t *testing.T) {
	shop := testShop()
	appts := []domain.Appointment{
		appt("00000000-0000-0000-0000-000000000001", "a", "09:00", domain.AppointmentStatusConfirmed),
	}

	gotA := AvailableSlots(shop, appts, Query{Day: monday, StaffID: "a"})
	if !slices.Equal(gotA, []string{"10:00", "11:00"}) {
		t.Fatalf("staff a slots = %v", gotA)
	}
	gotB := AvailableSlots(shop, appts, Query{Day: monday, StaffID: "b"})
	if !slices.Equal(gotB, []string{"09:00", "10:00", "11:00"}) {
		t.Fatalf("staff b slots = %v", gotB)
	}
	gotUnassigned := AvailableSlots(shop, appts, Query{Day: monday})
	if !slices.Equal(gotUnassigned, []string{"10:00", "11:00"}) {
		t.Fatalf("unassigned slots = %v", gotUnassigned)
	}
}

func TestAvailableSlotsAnyStaff(t *testing.T) {
	shop := testShop()
	appts := []domain.Appointment{
		appt("00000000-0000-0000-0000-000000000001", "a", "09:00", domain.AppointmentStatusConfirmed),
		appt("00000000-0000-0000-0000-000000000002", "a", "10:00", domain.AppointmentStatusConfirmed),
		appt("00000000-0000-0000-0000-000000000003", "b", "10:00", domain.AppointmentStatusConfirmed),
	}

	got := AvailableSlotsAnyStaff(shop, appts, Query{Day: monday})
	if !slices.Equal(got, []string{"09:00", "11:00"}) {
		t.Fatalf("slots = %v, want [09:00 11:00]", got)
	}
}

func TestAvailableSlotsAnyStaff_NoStaffFallsBackToUnassigned(t *testing.T) {
	shop := testShop()
	shop.StaffIDs = nil
	appts := []domain.Appointment{
		appt("00000000-0000-0000-0000-000000000001", "", "09:00", domain.AppointmentStatusConfirmed),
	}

	got := AvailableSlotsAnyStaff(shop, appts, Query{Day: monday})
	if !slices.Equal(got, []string{"10:00", "11:00"}) {
		t.Fatalf("slots = %v, want [10:00 11:00]", got)
	}
}

func TestAvailableSlots_ExemptKeepsOwnSlot(t *testing.T) {
	shop := testShop()
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	appts := []domain.Appointment{
		appt(id.String(), "a", "09:00", domain.AppointmentStatusConfirmed),
	}

	got := AvailableSlots(shop, appts, Query{Day: monday, StaffID: "a", ExemptID: id})
	if !slices.Contains(got, "09:00") {
		t.Fatalf("slots = %v, want 09:00 included", got)
	}
}

func TestAvailableSlots_ClosedDayIsEmpty(t *testing.T) {
	got := AvailableSlots(testShop(), nil, Query{Day: monday.AddDate(0, 0, 2)})
	if len(got) != 0 {
		t.Fatalf("slots = %v, want empty", got)
	}
}
