package grpc

import (
	"time"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/service/shops"
)

type Empty struct{}

type Appointment struct {
	ID          string `json:"id"`
	ShopID      string `json:"shop_id"`
	ShopName    string `json:"shop_name"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	StaffID     string `json:"staff_id,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type AppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type CreateAppointmentRequest struct {
	ShopID      string `json:"shop_id"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
	StaffID     string `json:"staff_id,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	// Actor is the role of the caller: client (default), barber or admin.
	Actor string `json:"actor,omitempty"`
}

type RescheduleAppointmentRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Date          *string `json:"date,omitempty"`
	Time          *string `json:"time,omitempty"`
	Actor         string  `json:"actor,omitempty"`
}

type SetAppointmentStatusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	Actor         string `json:"actor,omitempty"`
}

type AppointmentIDRequest struct {
	AppointmentID string `json:"appointment_id"`
}

// ListAppointmentsRequest selects by exactly one of the ids.
type ListAppointmentsRequest struct {
	ShopID   string `json:"shop_id,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	StaffID  string `json:"staff_id,omitempty"`
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

type AvailableSlotsRequest struct {
	ShopID              string `json:"shop_id"`
	Date                string `json:"date"`
	StaffID             string `json:"staff_id,omitempty"`
	AnyStaff            bool   `json:"any_staff,omitempty"`
	ExemptAppointmentID string `json:"exempt_appointment_id,omitempty"`
}

type AvailableSlotsResponse struct {
	Slots []string `json:"slots"`
}

type TimeSlot struct {
	Time     string `json:"time"`
	Duration int    `json:"duration"`
}

type Shop struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Address            string     `json:"address,omitempty"`
	City               string     `json:"city,omitempty"`
	OwnerID            string     `json:"owner_id"`
	StaffIDs           []string   `json:"staff_ids"`
	JoinCode           string     `json:"join_code"`
	WorkingDays        []string   `json:"working_days"`
	OpeningTime        string     `json:"opening_time"`
	ClosingTime        string     `json:"closing_time"`
	AvailableTimeSlots []TimeSlot `json:"available_time_slots,omitempty"`
	IsActive           bool       `json:"is_active"`
}

type ShopResponse struct {
	Shop *Shop `json:"shop"`
}

type CreateShopRequest struct {
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty"`
	WorkingDays []string `json:"working_days"`
	OpeningTime string   `json:"opening_time"`
	ClosingTime string   `json:"closing_time"`
}

type ShopIDRequest struct {
	ShopID string `json:"shop_id"`
}

type ListShopsResponse struct {
	Shops []*Shop `json:"shops"`
}

type UpdateShopHoursRequest struct {
	ShopID      string   `json:"shop_id"`
	ActorID     string   `json:"actor_id"`
	WorkingDays []string `json:"working_days"`
	OpeningTime string   `json:"opening_time"`
	ClosingTime string   `json:"closing_time"`
}

type UpdateShopProfileRequest struct {
	ShopID      string `json:"shop_id"`
	ActorID     string `json:"actor_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
}

type SaveScheduleRequest struct {
	ShopID  string     `json:"shop_id"`
	ActorID string     `json:"actor_id"`
	Slots   []TimeSlot `json:"slots"`
}

type SetShopActiveRequest struct {
	ShopID  string `json:"shop_id"`
	ActorID string `json:"actor_id"`
	Active  bool   `json:"active"`
}

type JoinShopRequest struct {
	JoinCode string `json:"join_code"`
	BarberID string `json:"barber_id"`
}

type LeaveShopRequest struct {
	ShopID   string `json:"shop_id"`
	BarberID string `json:"barber_id"`
}

type TransferOwnershipRequest struct {
	ShopID     string `json:"shop_id"`
	ActorID    string `json:"actor_id"`
	NewOwnerID string `json:"new_owner_id"`
}

type DeleteShopRequest struct {
	ShopID  string `json:"shop_id"`
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason,omitempty"`
}

type StaffMember struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	IsOwner bool   `json:"is_owner"`
}

type ListStaffResponse struct {
	Staff []*StaffMember `json:"staff"`
}

type Notification struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	AppointmentID string `json:"appointment_id,omitempty"`
	ShopID        string `json:"shop_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Read          bool   `json:"read"`
	CreatedAt     string `json:"created_at"`
}

type RecipientRequest struct {
	RecipientID string `json:"recipient_id"`
}

type MarkNotificationReadRequest struct {
	RecipientID    string `json:"recipient_id"`
	NotificationID string `json:"notification_id"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

func toWireAppointment(a domain.Appointment) *Appointment {
	out := &Appointment{
		ID:          a.ID.String(),
		ShopID:      a.ShopID,
		ShopName:    a.ShopName,
		ClientID:    a.ClientID,
		ClientName:  a.ClientName,
		ClientPhone: a.ClientPhone,
		StaffID:     a.StaffID,
		Date:        a.Date,
		Time:        a.Time,
		Status:      string(a.Status),
		CreatedAt:   formatTime(a.CreatedAt),
	}
	if !a.UpdatedAt.IsZero() {
		out.UpdatedAt = formatTime(a.UpdatedAt)
	}
	return out
}

func toWireAppointments(appts []domain.Appointment) []*Appointment {
	out := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, toWireAppointment(a))
	}
	return out
}

func toWireShop(s domain.Shop) *Shop {
	days := make([]string, 0, len(s.WorkingDays))
	for _, d := range s.WorkingDays {
		days = append(days, d.SpanishName())
	}
	var slots []TimeSlot
	for _, ts := range s.AvailableTimeSlots {
		slots = append(slots, TimeSlot{Time: ts.Time, Duration: ts.DurationMinutes})
	}
	staff := s.StaffIDs
	if staff == nil {
		staff = []string{}
	}
	return &Shop{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		Phone:              s.Phone,
		Address:            s.Address,
		City:               s.City,
		OwnerID:            s.OwnerID,
		StaffIDs:           staff,
		JoinCode:           s.JoinCode,
		WorkingDays:        days,
		OpeningTime:        s.OpeningTime,
		ClosingTime:        s.ClosingTime,
		AvailableTimeSlots: slots,
		IsActive:           s.IsActive,
	}
}

func toWireStaff(members []shops.StaffMember) []*StaffMember {
	out := make([]*StaffMember, 0, len(members))
	for _, m := range members {
		out = append(out, &StaffMember{ID: m.ID, Name: m.Name, Email: m.Email, IsOwner: m.IsOwner})
	}
	return out
}

func toWireNotification(n domain.Notification) *Notification {
	out := &Notification{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Message:   n.Message,
		ShopID:    n.ShopID,
		Reason:    n.Reason,
		Read:      n.Read,
		CreatedAt: formatTime(n.CreatedAt),
	}
	if n.AppointmentID != nil {
		out.AppointmentID = n.AppointmentID.String()
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
