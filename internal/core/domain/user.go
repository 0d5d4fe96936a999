package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the platform role of an authenticated principal.
type Role string

const (
	RoleAmbassador Role = "ambassador"
	RoleAdvertiser Role = "advertiser"
	RoleAdmin      Role = "admin"
	// RoleSystem is used by internal callers such as the settlement engine
	// and the end-date sweep. It is never issued to external clients.
	RoleSystem Role = "system"
)

// User is a platform account. Balance and ViewAverage are only meaningful
// for ambassadors.
type User struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Role        Role
	Balance     decimal.Decimal
	ViewAverage int64
	CountryCode string
	City        string
	Region      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Principal is the authenticated identity supplied by the auth middleware.
type Principal struct {
	ID   string
	Role Role
}

// SystemPrincipal identifies internal callers.
var SystemPrincipal = Principal{ID: "system", Role: RoleSystem}
