package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
)

type companyRepository struct {
	store *Store
}

func NewCompanyRepository(store *Store) company.CompanyRepository {
	return &companyRepository{store: store}
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (r *companyRepository) List(ctx context.Context) ([]company.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]company.Company, 0, len(r.store.companies))
	for _, c := range r.store.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
