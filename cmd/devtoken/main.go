// Command devtoken mints an access token for local testing. Login is handled
// by an external identity service in production.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/config"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
)

func main() {
	role := flag.String("role", string(user.RoleStaff), "ADMIN, ADMIN_STAFF, COMPANY or STAFF")
	userID := flag.String("user", "", "user ID (random when empty)")
	staffID := flag.String("staff", "", "staff ID, required for STAFF")
	companyID := flag.String("company", fixtures.HimalayaCompanyID, "company ID, ignored for ADMIN and ADMIN_STAFF")
	flag.Parse()

	if err := run(user.Role(*role), *userID, *staffID, *companyID); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(role user.Role, userID, staffID, companyID string) error {
	if !role.IsValid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if role == user.RoleStaff && staffID == "" {
		return fmt.Errorf("-staff is required for role STAFF")
	}
	if userID == "" {
		userID = uuid.NewString()
	}

	actor := user.Actor{UserID: userID, StaffID: staffID, CompanyID: companyID, Role: role}
	if actor.IsPlatformAdmin() {
		actor.CompanyID = ""
		actor.StaffID = ""
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	service, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	token, expiresAt, err := service.GenerateAccessToken(actor)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "role=%s company=%s staff=%s expires_at=%d\n", actor.Role, actor.CompanyID, actor.StaffID, expiresAt)
	fmt.Println(token)
	return nil
}
