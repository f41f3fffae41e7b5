package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveRepository struct {
	store *Store
}

func NewLeaveRepository(store *Store) leave.LeaveRepository {
	return &leaveRepository{store: store}
}

func (r *leaveRepository) Create(ctx context.Context, l leave.Leave) (leave.Leave, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := r.store.now()
	l.CreatedAt = now
	l.UpdatedAt = now
	r.store.leaves[l.ID] = l
	id := l.ID
	r.store.record(ctx, func() { delete(r.store.leaves, id) })
	return l, nil
}

func (r *leaveRepository) GetByID(ctx context.Context, id string) (leave.Leave, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	l, ok := r.store.leaves[id]
	if !ok {
		return leave.Leave{}, leave.ErrLeaveRequestNotFound
	}
	return l, nil
}

func (r *leaveRepository) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.Leave, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]leave.Leave, 0)
	for _, l := range r.store.leaves {
		if filter.CompanyID != nil && l.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.StaffID != nil && l.StaffID != *filter.StaffID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, filter.Offset, filter.Limit), int64(len(out)), nil
}

func (r *leaveRepository) UpdateStatus(ctx context.Context, id string, status leave.Status, reviewerID string, at time.Time) (leave.Leave, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	l, ok := r.store.leaves[id]
	if !ok {
		return leave.Leave{}, leave.ErrLeaveRequestNotFound
	}
	if l.Status != leave.StatusPending {
		return leave.Leave{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	prev := l
	r.store.record(ctx, func() { r.store.leaves[id] = prev })

	l.Status = status
	l.ReviewedBy = &reviewerID
	l.ReviewedAt = &at
	l.UpdatedAt = r.store.now()
	r.store.leaves[id] = l
	return l, nil
}

func (r *leaveRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prev, ok := r.store.leaves[id]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(r.store.leaves, id)
	r.store.record(ctx, func() { r.store.leaves[id] = prev })
	return nil
}

func (r *leaveRepository) HasApprovedLeaveOn(ctx context.Context, staffID string, day string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, l := range r.store.leaves {
		if l.StaffID == staffID && l.Status == leave.StatusApproved && l.Covers(day) {
			return true, nil
		}
	}
	return false, nil
}
