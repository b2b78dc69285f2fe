package domain

import (
	"slices"
	"time"
)

// Role is fixed at registration.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus gates authentication.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusLocked    AccountStatus = "locked"
	StatusSuspended AccountStatus = "suspended"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusLocked, StatusSuspended:
		return true
	}
	return false
}

// CanAuthenticate is false for locked and suspended accounts.
func (s AccountStatus) CanAuthenticate() bool {
	return s == StatusActive
}

// Reasons recorded in the trust history.
const (
	ReasonAccountCreation = "Account creation"
	ReasonCustomerReview  = "Customer review"
	ReasonAdminAdjustment = "Admin adjustment"
)

// TrustHistoryEntry is one append-only record of a trust score change.
type TrustHistoryEntry struct {
	Score     float64   `json:"score" bson:"score"`
	Reason    string    `json:"reason" bson:"reason"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Account is any marketplace participant: customer, vendor or admin.
type Account struct {
	ID           string              `json:"id" bson:"_id"`
	Name         string              `json:"name" bson:"name"`
	Email        string              `json:"email" bson:"email"`
	PasswordHash string              `json:"-" bson:"password_hash"`
	Role         Role                `json:"role" bson:"role"`
	TrustScore   float64             `json:"trust_score" bson:"trust_score"`
	ReviewCount  int                 `json:"review_count" bson:"review_count"`
	TrustHistory []TrustHistoryEntry `json:"trust_history" bson:"trust_history"`
	Status       AccountStatus       `json:"account_status" bson:"account_status"`
	Permissions  []Action            `json:"permissions" bson:"permissions"`
	// Version is bumped on every trust write and guards conditional updates.
	Version    int64     `json:"-" bson:"version"`
	LoginCount int       `json:"login_count" bson:"login_count"`
	LastLogin  time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// HasPermission reports whether the stored permission set contains a.
func (a *Account) HasPermission(act Action) bool {
	return slices.Contains(a.Permissions, act)
}

// GetTrustScore lets accounts flow through trust filters.
func (a Account) GetTrustScore() float64 { return a.TrustScore }

// Actor is the authenticated caller, passed explicitly into every operation.
type Actor struct {
	ID    string
	Role  Role
	Email string
}

// Can is shorthand for Allows(a.Role, act).
func (a Actor) Can(act Action) bool {
	return Allows(a.Role, act)
}
