package notify

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

func sampleAppt(staffID string) domain.Appointment {
	return domain.Appointment{
		ID:         uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		ShopID:     "s1",
		ShopName:   "Barberia Central",
		ClientID:   "c1",
		ClientName: "Ana",
		StaffID:    staffID,
		Date:       "2026-01-05",
		Time:       "09:00",
	}
}

func TestAppointmentEvents_Recipients(t *testing.T) {
	cases := []struct {
		name  string
		appt  domain.Appointment
		actor domain.Role
		want  string
	}{
		{"client to assigned staff", sampleAppt("a"), domain.RoleClient, "a"},
		{"client to owner when unassigned", sampleAppt(""), domain.RoleClient, "owner"},
		{"staff to client", sampleAppt("a"), domain.RoleBarber, "c1"},
		{"admin to client", sampleAppt(""), domain.RoleAdmin, "c1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AppointmentCreated(tc.appt, tc.actor, "owner")
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1", len(got))
			}
			if got[0].RecipientID != tc.want {
				t.Fatalf("recipient = %q, want %q", got[0].RecipientID, tc.want)
			}
			if got[0].AppointmentID == nil || *got[0].AppointmentID != tc.appt.ID {
				t.Fatalf("appointment id not set")
			}
		})
	}
}

func TestAppointmentCancelled_CarriesReason(t *testing.T) {
	got := AppointmentCancelled(sampleAppt("a"), domain.RoleBarber, "owner", "enfermedad")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Type != domain.NotificationAppointmentCancel || got[0].Reason != "enfermedad" {
		t.Fatalf("got %+v", got[0])
	}
	if !strings.HasSuffix(got[0].Message, "Motivo: enfermedad") {
		t.Fatalf("message = %q", got[0].Message)
	}
}

func TestAppointmentRescheduled_NoopWhenSlotUnchanged(t *testing.T) {
	appt := sampleAppt("a")
	if got := AppointmentRescheduled(appt, appt, domain.RoleClient, "owner"); got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
	next := appt
	next.Time = "10:00"
	if got := AppointmentRescheduled(appt, next, domain.RoleClient, "owner"); len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestShopDeleted_SkipsActor(t *testing.T) {
	shop := domain.Shop{ID: "s1", Name: "Central", OwnerID: "a", StaffIDs: []string{"a", "b", "c"}}
	got := ShopDeleted(shop, "a", "")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, n := range got {
		if n.RecipientID == "a" {
			t.Fatalf("actor notified")
		}
		if strings.Contains(n.Message, "Motivo") {
			t.Fatalf("message = %q, want no reason", n.Message)
		}
	}
}

func TestShopMembershipEvents_GoToOwner(t *testing.T) {
	shop := domain.Shop{ID: "s1", OwnerID: "a"}
	for _, got := range [][]domain.Notification{BarberJoined(shop, "Beto"), BarberLeft(shop, "Beto")} {
		if len(got) != 1 || got[0].RecipientID != "a" || got[0].ShopID != "s1" {
			t.Fatalf("got %+v", got)
		}
	}
	shop.OwnerID = "b"
	got := OwnershipTransferred(shop, "Ana")
	if got[0].RecipientID != "b" || got[0].Message != "Has recibido la propiedad del local de Ana" {
		t.Fatalf("got %+v", got[0])
	}
}
