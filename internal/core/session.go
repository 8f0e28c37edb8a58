package core

import (
	"context"
	"strconv"
)

// Role names a dashboard audience.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client"
)

// Roles lists every role in descending order of privilege.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleEmployee, RoleClient}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// Label returns a human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleAdmin:
		return "Admin"
	case RoleEmployee:
		return "Employee"
	case RoleClient:
		return "Client"
	}
	return string(r)
}

// SessionContext identifies who is asking and on behalf of which company.
// It is passed explicitly to every service call and page builder.
type SessionContext struct {
	UserID    int
	CompanyID int
	Username  string
	Name      string
	Role      Role
	// Token is the backend bearer token issued at login, if any.
	Token string
}

// Valid reports whether the session carries a user and a known role.
func (s SessionContext) Valid() bool {
	return s.UserID > 0 && s.Role.Valid()
}

// IsSuperAdmin reports whether the session spans all companies.
func (s SessionContext) IsSuperAdmin() bool { return s.Role == RoleSuperAdmin }

// HasRole reports whether the session's role is one of roles. An empty list allows everyone.
func (s SessionContext) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == s.Role {
			return true
		}
	}
	return false
}

// CompanyKey returns the company id as a header value, or "" for super admins
// who are not scoped to one company.
func (s SessionContext) CompanyKey() string {
	if s.IsSuperAdmin() || s.CompanyID == 0 {
		return ""
	}
	return strconv.Itoa(s.CompanyID)
}

// DisplayName prefers the full name over the username.
func (s SessionContext) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Username
}

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s SessionContext) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx.
func SessionFrom(ctx context.Context) (SessionContext, bool) {
	s, ok := ctx.Value(sessionKey{}).(SessionContext)
	return s, ok
}
