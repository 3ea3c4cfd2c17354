package domain

import "github.com/uptrace/bun"

type Role string

const (
	RoleClient Role = "client"
	RoleBarber Role = "barber"
	RoleAdmin  Role = "admin"
)

type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusBlocked AccountStatus = "blocked"
)

// Account is a read-only view of the user directory.
type Account struct {
	bun.BaseModel `bun:"table:accounts"`

	ID     string        `bun:"id,pk"`
	Name   string        `bun:"name,notnull"`
	Email  string        `bun:"email,notnull,unique"`
	Phone  string        `bun:"phone"`
	Role   Role          `bun:"role,notnull"`
	Status AccountStatus `bun:"status,notnull"`
}
