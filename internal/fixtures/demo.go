package fixtures

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/repository/memory"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func boolPtr(b bool) *bool          { return &b }
func intPtr(i int) *int             { return &i }
func strPtr(s string) *string       { return &s }
func float64Ptr(f float64) *float64 { return &f }

// ==========================================
// SEEDED DATA RESULT
// ==========================================

// SeededDataIDs holds the IDs of the demo data, keyed for lookup by name.
type SeededDataIDs struct {
	// Company IDs by name
	CompanyIDs map[string]string // e.g., "Himalaya Logistics" -> "uuid"

	// Staff IDs by email
	StaffIDs map[string]string // e.g., "sita@himalaya.example" -> "uuid"
}

// NewSeededDataIDs creates a new SeededDataIDs with initialized maps
func NewSeededDataIDs() *SeededDataIDs {
	return &SeededDataIDs{
		CompanyIDs: make(map[string]string),
		StaffIDs:   make(map[string]string),
	}
}

// ==========================================
// DEMO COMPANIES
// ==========================================

// Fixed IDs so tokens minted by cmd/devtoken stay valid across restarts.
const (
	HimalayaCompanyID = "01933b2e-6f00-7a00-8000-000000000001"
	LumbiniCompanyID  = "01933b2e-6f00-7a00-8000-000000000002"
)

// GetDemoCompanies returns two companies: one with a geofenced headquarters
// in Kathmandu and one without.
func GetDemoCompanies() []company.Company {
	return []company.Company{
		{
			ID:    HimalayaCompanyID,
			Name:  "Himalaya Logistics",
			HQLat: float64Ptr(27.7172),
			HQLng: float64Ptr(85.3240),
		},
		{
			ID:   LumbiniCompanyID,
			Name: "Lumbini Field Services",
		},
	}
}

// ==========================================
// DEMO STAFF
// ==========================================

// GetDemoStaff returns the staff roster for a demo company.
func GetDemoStaff(companyID string) []staff.Staff {
	switch companyID {
	case HimalayaCompanyID:
		return []staff.Staff{
			{ID: "01933b2e-6f00-7a00-8000-000000000101", CompanyID: companyID, Name: "Sita Sharma", Email: "sita@himalaya.example", Phone: strPtr("+977-9800000001")},
			{ID: "01933b2e-6f00-7a00-8000-000000000102", CompanyID: companyID, Name: "Ram Thapa", Email: "ram@himalaya.example",
				Shift: staff.Shift{StartTime: "07:00", EndTime: "15:00"}},
			{ID: "01933b2e-6f00-7a00-8000-000000000103", CompanyID: companyID, Name: "Maya Gurung", Email: "maya@himalaya.example"},
		}
	case LumbiniCompanyID:
		return []staff.Staff{
			{ID: "01933b2e-6f00-7a00-8000-000000000201", CompanyID: companyID, Name: "Hari Adhikari", Email: "hari@lumbini.example",
				Shift: staff.Shift{StartTime: "22:00", EndTime: "06:00"}},
			{ID: "01933b2e-6f00-7a00-8000-000000000202", CompanyID: companyID, Name: "Gita Rai", Email: "gita@lumbini.example"},
		}
	}
	return nil
}

// ==========================================
// DEFAULT CONFIGURATION
// ==========================================

// GetDefaultCompanyConfig returns the company-level overrides seeded with a
// demo company. Fields left nil inherit from the admin config.
func GetDefaultCompanyConfig(companyID string) sysconfig.SystemConfig {
	cfg := sysconfig.SystemConfig{
		Type:      sysconfig.ConfigTypeCompany,
		CompanyID: strPtr(companyID),
		Timezone:  strPtr("Asia/Kathmandu"),
		// Sunday-Friday work week
		WorkWeekDays: []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri"},
	}
	if companyID == LumbiniCompanyID {
		cfg.AutoCheckoutInactivity = intPtr(60)
		cfg.EnableFakeLocationDetection = boolPtr(false)
	}
	return cfg
}

// GetDefaultAdminConfig returns the platform-wide config document.
func GetDefaultAdminConfig() sysconfig.SystemConfig {
	return sysconfig.SystemConfig{
		Type: sysconfig.ConfigTypeAdmin,
		Holidays: []sysconfig.Holiday{
			{Date: "2025-10-02", Description: "Dashain"},
			{Date: "2025-10-21", Description: "Tihar"},
		},
		LocationTrackingInterval: intPtr(sysconfig.DefaultLocationTrackingInterval),
		StaffLimitPerCompany:     intPtr(sysconfig.DefaultStaffLimitPerCompany),
	}
}

// ==========================================
// SEEDING
// ==========================================

// SeedMemory loads the demo companies, staff and configuration into store.
func SeedMemory(ctx context.Context, store *memory.Store) (*SeededDataIDs, error) {
	ids := NewSeededDataIDs()
	configs := memory.NewSystemConfigRepository(store)

	if _, err := configs.Upsert(ctx, GetDefaultAdminConfig()); err != nil {
		return nil, fmt.Errorf("failed to seed admin config: %w", err)
	}

	for _, c := range GetDemoCompanies() {
		store.PutCompany(c)
		ids.CompanyIDs[c.Name] = c.ID

		for _, st := range GetDemoStaff(c.ID) {
			store.PutStaff(st)
			ids.StaffIDs[st.Email] = st.ID
		}

		if _, err := configs.Upsert(ctx, GetDefaultCompanyConfig(c.ID)); err != nil {
			return nil, fmt.Errorf("failed to seed config for company %s: %w", c.Name, err)
		}
	}
	return ids, nil
}
