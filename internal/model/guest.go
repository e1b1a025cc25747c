package model

import "time"

// GuestID uniquely identifies a guest across the system
type GuestID string

// Role describes what a guest is allowed to do
type Role string

const (
	// RoleGuest is the default role for anyone who signs in with a name
	RoleGuest Role = "guest"
	// RoleHost marks the event hosts
	RoleHost Role = "host"
	// RoleAuthorized marks guests the hosts have granted extra trust
	RoleAuthorized Role = "authorized"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleHost, RoleAuthorized:
		return true
	}
	return false
}

// Guest represents a participant identity in the album.
// DisplayName is the human-facing name; NormalizedName is the canonical key
// used for equality and similarity matching (see the namekey package).
type Guest struct {
	ID             GuestID
	DisplayName    string
	NormalizedName string
	Nickname       string
	Role           Role
	CreatedAt      time.Time
	LastActiveAt   time.Time
	PhotoCount     int
	LastUploadAt   *time.Time
}
