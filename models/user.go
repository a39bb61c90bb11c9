package models

import "strings"

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Actor is the authenticated caller as supplied by the upstream identity
// provider (JWT claims or the admin API key).
type Actor struct {
	UserID string
	Role   Role
}

// Elevated reports whether the actor may act on orders it does not own.
func (a Actor) Elevated() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// Address is embedded in orders as the shipping destination.
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}

func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Country+a.State+a.City+a.Street+a.PostalCode) == ""
}
