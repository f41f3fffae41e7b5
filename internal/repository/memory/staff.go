package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
)

type staffRepository struct {
	store *Store
}

func NewStaffRepository(store *Store) staff.StaffRepository {
	return &staffRepository{store: store}
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	st, ok := r.store.staff[id]
	if !ok {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	return st, nil
}

// GetByIDForUpdate has no row lock to take; WithinTransaction already serializes.
func (r *staffRepository) GetByIDForUpdate(ctx context.Context, id string) (staff.Staff, error) {
	return r.GetByID(ctx, id)
}

func (r *staffRepository) List(ctx context.Context, companyID *string) ([]staff.Staff, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]staff.Staff, 0)
	for _, st := range r.store.staff {
		if companyID != nil && st.CompanyID != *companyID {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *staffRepository) ListCheckedIn(ctx context.Context, companyID *string, limit int) ([]staff.Staff, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]staff.Staff, 0)
	for _, st := range r.store.staff {
		if !st.GPSStatus {
			continue
		}
		if companyID != nil && st.CompanyID != *companyID {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastCheckIn, out[j].LastCheckIn
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	return paginate(out, 0, limit), nil
}

func (r *staffRepository) MarkCheckedIn(ctx context.Context, staffID, sessionID string, loc staff.Location) error {
	return r.update(ctx, staffID, func(st *staff.Staff) error {
		if st.ActiveSessionID != nil {
			return staff.ErrActiveSessionExists
		}
		at := loc.Timestamp
		st.GPSStatus = true
		st.ActiveSessionID = &sessionID
		st.LastCheckIn = &at
		st.LastCheckInLocation = &loc
		st.LastLocation = &loc
		return nil
	})
}

func (r *staffRepository) MarkCheckedOut(ctx context.Context, staffID string, at time.Time, loc *staff.Location) error {
	return r.update(ctx, staffID, func(st *staff.Staff) error {
		st.GPSStatus = false
		st.ActiveSessionID = nil
		st.LastCheckOut = &at
		if loc != nil {
			l := *loc
			st.LastCheckOutLocation = &l
			st.LastLocation = &l
		}
		return nil
	})
}

func (r *staffRepository) ResetCheckedIn(ctx context.Context, staffID string) error {
	return r.update(ctx, staffID, func(st *staff.Staff) error {
		st.GPSStatus = false
		st.ActiveSessionID = nil
		return nil
	})
}

func (r *staffRepository) AppendRoutePoint(ctx context.Context, staffID string, p staff.Location) error {
	err := r.update(ctx, staffID, func(st *staff.Staff) error {
		st.LastLocation = &p
		return nil
	})
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := len(r.store.staffRoutes[staffID])
	r.store.record(ctx, func() { r.store.staffRoutes[staffID] = r.store.staffRoutes[staffID][:n] })
	r.store.staffRoutes[staffID] = append(r.store.staffRoutes[staffID], p)
	return nil
}

func (r *staffRepository) RoutePoints(ctx context.Context, staffID string) ([]staff.Location, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.staff[staffID]; !ok {
		return nil, staff.ErrStaffNotFound
	}
	route := r.store.staffRoutes[staffID]
	out := make([]staff.Location, len(route))
	copy(out, route)
	return out, nil
}

func (r *staffRepository) SetSpoofingDetected(ctx context.Context, staffID string, detected bool) error {
	return r.update(ctx, staffID, func(st *staff.Staff) error {
		st.SpoofingDetected = detected
		return nil
	})
}

func (r *staffRepository) UpdateSettings(ctx context.Context, staffID string, req staff.UpdateSettingsRequest) error {
	return r.update(ctx, staffID, func(st *staff.Staff) error {
		if req.Name != nil {
			st.Name = *req.Name
		}
		if req.Phone != nil {
			phone := *req.Phone
			st.Phone = &phone
		}
		if req.Shift != nil {
			st.Shift = *req.Shift
		}
		return nil
	})
}

func (r *staffRepository) update(ctx context.Context, staffID string, fn func(st *staff.Staff) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	st, ok := r.store.staff[staffID]
	if !ok {
		return staff.ErrStaffNotFound
	}
	prev := st
	if err := fn(&st); err != nil {
		return err
	}
	st.UpdatedAt = r.store.now()
	r.store.staff[staffID] = st
	r.store.record(ctx, func() { r.store.staff[staffID] = prev })
	return nil
}
