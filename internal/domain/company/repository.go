package company

import "context"

// CompanyRepository is read-only: companies are managed by the onboarding system.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	List(ctx context.Context) ([]Company, error)
}
