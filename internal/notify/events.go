// Package notify builds notification records for scheduling events and relays the outbox to an
// external sink.
package notify

import (
	"fmt"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

// counterparty is who hears about a change made by actor: the client when staff acted, otherwise the
// assigned staff member, or the shop owner for unassigned appointments.
func counterparty(appt domain.Appointment, actor domain.Role, ownerID string) string {
	if actor != domain.RoleClient {
		return appt.ClientID
	}
	if appt.StaffID != "" {
		return appt.StaffID
	}
	return ownerID
}

func appointmentNote(t domain.NotificationType, appt domain.Appointment, recipient, msg string) []domain.Notification {
	if recipient == "" {
		return nil
	}
	id := appt.ID
	return []domain.Notification{{
		Type:          t,
		RecipientID:   recipient,
		Message:       msg,
		AppointmentID: &id,
		ShopID:        appt.ShopID,
	}}
}

func AppointmentCreated(appt domain.Appointment, actor domain.Role, ownerID string) []domain.Notification {
	var msg string
	if actor == domain.RoleClient {
		msg = fmt.Sprintf("%s reservó una cita el %s a las %s", appt.ClientName, appt.Date, appt.Time)
	} else {
		msg = fmt.Sprintf("%s te agendó una cita el %s a las %s", appt.ShopName, appt.Date, appt.Time)
	}
	return appointmentNote(domain.NotificationAppointmentCreated, appt, counterparty(appt, actor, ownerID), msg)
}

func AppointmentRescheduled(prev, next domain.Appointment, actor domain.Role, ownerID string) []domain.Notification {
	if prev.Date == next.Date && prev.Time == next.Time {
		return nil
	}
	msg := fmt.Sprintf("La cita del %s a las %s se movió al %s a las %s", prev.Date, prev.Time, next.Date, next.Time)
	return appointmentNote(domain.NotificationAppointmentRescheduled, next, counterparty(next, actor, ownerID), msg)
}

func AppointmentCancelled(appt domain.Appointment, actor domain.Role, ownerID, reason string) []domain.Notification {
	var msg string
	if actor == domain.RoleClient {
		msg = fmt.Sprintf("El cliente %s ha cancelado su cita", appt.ClientName)
	} else {
		msg = "Tu cita ha sido cancelada por el barbero"
	}
	if reason != "" {
		msg += ". Motivo: " + reason
	}
	out := appointmentNote(domain.NotificationAppointmentCancel, appt, counterparty(appt, actor, ownerID), msg)
	for i := range out {
		out[i].Reason = reason
	}
	return out
}

func BarberJoined(shop domain.Shop, barberName string) []domain.Notification {
	return []domain.Notification{{
		Type:        domain.NotificationBarberJoin,
		RecipientID: shop.OwnerID,
		Message:     fmt.Sprintf("%s se ha unido al local", barberName),
		ShopID:      shop.ID,
	}}
}

func BarberLeft(shop domain.Shop, barberName string) []domain.Notification {
	return []domain.Notification{{
		Type:        domain.NotificationBarberLeave,
		RecipientID: shop.OwnerID,
		Message:     fmt.Sprintf("%s ha dejado el local", barberName),
		ShopID:      shop.ID,
	}}
}

// ShopDeleted addresses every staff member except the one who deleted the shop.
func ShopDeleted(shop domain.Shop, actorID, reason string) []domain.Notification {
	msg := fmt.Sprintf("El local %q ha sido eliminado", shop.Name)
	if reason != "" {
		msg += ". Motivo: " + reason
	}
	var out []domain.Notification
	for _, staffID := range shop.StaffIDs {
		if staffID == actorID {
			continue
		}
		out = append(out, domain.Notification{
			Type:        domain.NotificationShopDelete,
			RecipientID: staffID,
			Message:     msg,
			ShopID:      shop.ID,
			Reason:      reason,
		})
	}
	return out
}

func OwnershipTransferred(shop domain.Shop, previousOwnerName string) []domain.Notification {
	return []domain.Notification{{
		Type:        domain.NotificationShopOwner,
		RecipientID: shop.OwnerID,
		Message:     fmt.Sprintf("Has recibido la propiedad del local de %s", previousOwnerName),
		ShopID:      shop.ID,
	}}
}

// Event is the wire form of a notification handed to sinks.
type Event struct {
	ID            uuid.UUID  `json:"id"`
	Type          string     `json:"type"`
	RecipientID   string     `json:"recipient_id"`
	Message       string     `json:"message"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	ShopID        string     `json:"shop_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	CreatedAt     string     `json:"created_at"`
}

func EventOf(n domain.Notification) Event {
	return Event{
		ID:            n.ID,
		Type:          string(n.Type),
		RecipientID:   n.RecipientID,
		Message:       n.Message,
		AppointmentID: n.AppointmentID,
		ShopID:        n.ShopID,
		Reason:        n.Reason,
		CreatedAt:     n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
