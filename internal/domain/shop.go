package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// TimeSlot is a staff-defined bookable start time.
type TimeSlot struct {
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration"`
}

// Shop carries the profile and availability configuration of a barbershop.
// When AvailableTimeSlots is non-empty it is authoritative and OpeningTime/ClosingTime are ignored.
type Shop struct {
	bun.BaseModel `bun:"table:shops"`

	ID                 string     `bun:"id,pk"`
	Name               string     `bun:"name,notnull"`
	Description        string     `bun:"description"`
	Phone              string     `bun:"phone"`
	Address            string     `bun:"address"`
	City               string     `bun:"city"`
	OwnerID            string     `bun:"owner_id,notnull"`
	StaffIDs           []string   `bun:"staff_ids,array,notnull"`
	JoinCode           string     `bun:"join_code,notnull,unique"`
	WorkingDays        []Weekday  `bun:"working_days,array,notnull"`
	OpeningTime        string     `bun:"opening_time,notnull"`
	ClosingTime        string     `bun:"closing_time,notnull"`
	AvailableTimeSlots []TimeSlot `bun:"available_time_slots,type:jsonb,nullzero"`
	IsActive           bool       `bun:"is_active,notnull"`
	CreatedAt          time.Time  `bun:"created_at,notnull"`
	UpdatedAt          time.Time  `bun:"updated_at,notnull"`
}

func (s *Shop) WorksOn(day Weekday) bool {
	for _, d := range s.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}

func (s *Shop) HasStaff(id string) bool {
	for _, sid := range s.StaffIDs {
		if sid == id {
			return true
		}
	}
	return false
}

func (s *Shop) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}
