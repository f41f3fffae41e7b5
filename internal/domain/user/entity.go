package user

type Role string

const (
	RoleAdmin      Role = "ADMIN"       // Platform administrator
	RoleAdminStaff Role = "ADMIN_STAFF" // Platform operator with read access across companies
	RoleCompany    Role = "COMPANY"     // Company account
	RoleStaff      Role = "STAFF"       // Employee who checks in and out
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAdminStaff, RoleCompany, RoleStaff:
		return true
	}
	return false
}

// Actor is the authenticated caller as carried by the access token.
type Actor struct {
	UserID    string
	StaffID   string
	CompanyID string
	Role      Role
}

// IsPlatformAdmin reports whether the actor sees every company.
func (a Actor) IsPlatformAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleAdminStaff
}

// IsCompany checks if actor is a company account
func (a Actor) IsCompany() bool {
	return a.Role == RoleCompany
}

// IsStaff checks if actor is an employee
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}

// CanAccessCompany reports whether the actor may read or act on companyID.
func (a Actor) CanAccessCompany(companyID string) bool {
	if a.IsPlatformAdmin() {
		return true
	}
	return a.CompanyID != "" && a.CompanyID == companyID
}
