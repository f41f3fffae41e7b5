package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type sessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) attendance.SessionRepository {
	return &sessionRepository{store: store}
}

// Create rejects a second open session for the same staff member with
// ErrAlreadyCheckedIn, mirroring the unique partial index in PostgreSQL.
func (r *sessionRepository) Create(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if s.IsOpen() {
		for _, existing := range r.store.sessions {
			if existing.StaffID == s.StaffID && existing.IsOpen() {
				return attendance.Session{}, attendance.ErrAlreadyCheckedIn
			}
		}
	}

	if s.ID == "" {
		s.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := r.store.now()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Route = cloneRoute(s.Route)
	r.store.sessions[s.ID] = s
	id := s.ID
	r.store.record(ctx, func() { delete(r.store.sessions, id) })
	s.Route = cloneRoute(s.Route)
	return s, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (attendance.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.sessions[id]
	if !ok {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	s.Route = cloneRoute(s.Route)
	return s, nil
}

func (r *sessionRepository) ListOpenByStaff(ctx context.Context, staffID string) ([]attendance.Session, error) {
	out := r.filter(func(s attendance.Session) bool {
		return s.StaffID == staffID && s.IsOpen()
	})
	sortNewestFirst(out)
	return out, nil
}

func (r *sessionRepository) ListStaffWithOpenSessions(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, s := range r.store.sessions {
		if !s.IsOpen() {
			continue
		}
		if _, ok := seen[s.StaffID]; ok {
			continue
		}
		seen[s.StaffID] = struct{}{}
		ids = append(ids, s.StaffID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *sessionRepository) Close(ctx context.Context, id string, c attendance.Closure) error {
	return r.updateOpen(ctx, id, func(s *attendance.Session) {
		at := c.CheckOutTime
		hours := c.TotalHours
		s.CheckOutTime = &at
		s.CheckOutLocation = c.CheckOutLocation
		s.TotalHours = &hours
		s.AutoCheckOut = c.AutoCheckOut
		s.AutoCheckOutReason = c.AutoCheckOutReason
	})
}

func (r *sessionRepository) AppendRoutePoint(ctx context.Context, id string, p attendance.RoutePoint) error {
	return r.updateOpen(ctx, id, func(s *attendance.Session) {
		s.Route = append(cloneRoute(s.Route), p)
	})
}

func (r *sessionRepository) MarkSpoofed(ctx context.Context, id string, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sessions[id]
	if !ok {
		return attendance.ErrSessionNotFound
	}
	prev := s
	r.store.record(ctx, func() { r.store.sessions[id] = prev })

	s.IsSpoofed = true
	if s.SpoofReason == nil {
		s.SpoofReason = &reason
	}
	s.UpdatedAt = r.store.now()
	r.store.sessions[id] = s
	return nil
}

func (r *sessionRepository) ListByStaffBetween(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Session, error) {
	out := r.filter(func(s attendance.Session) bool {
		return s.StaffID == staffID && !s.CheckInTime.Before(from) && s.CheckInTime.Before(to)
	})
	sortOldestFirst(out)
	return out, nil
}

func (r *sessionRepository) ListByStaff(ctx context.Context, staffID string, offset, limit int) ([]attendance.Session, int64, error) {
	out := r.filter(func(s attendance.Session) bool {
		return s.StaffID == staffID
	})
	sortNewestFirst(out)
	return paginate(out, offset, limit), int64(len(out)), nil
}

func (r *sessionRepository) ListOverlapping(ctx context.Context, filter attendance.SessionFilter) ([]attendance.Session, error) {
	out := r.filter(func(s attendance.Session) bool {
		if filter.CompanyID != nil && s.CompanyID != *filter.CompanyID {
			return false
		}
		if filter.StaffID != nil && s.StaffID != *filter.StaffID {
			return false
		}
		if !s.CheckInTime.Before(filter.To) {
			return false
		}
		return s.CheckOutTime == nil || !s.CheckOutTime.Before(filter.From)
	})
	sortOldestFirst(out)
	return out, nil
}

func (r *sessionRepository) filter(keep func(s attendance.Session) bool) []attendance.Session {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]attendance.Session, 0)
	for _, s := range r.store.sessions {
		if keep(s) {
			s.Route = cloneRoute(s.Route)
			out = append(out, s)
		}
	}
	return out
}

func (r *sessionRepository) updateOpen(ctx context.Context, id string, fn func(s *attendance.Session)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.sessions[id]
	if !ok {
		return attendance.ErrSessionNotFound
	}
	if !s.IsOpen() {
		return attendance.ErrSessionClosed
	}
	prev := s
	prev.Route = cloneRoute(s.Route)
	r.store.record(ctx, func() { r.store.sessions[id] = prev })

	fn(&s)
	s.UpdatedAt = r.store.now()
	r.store.sessions[id] = s
	return nil
}

func sortNewestFirst(sessions []attendance.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CheckInTime.Equal(sessions[j].CheckInTime) {
			return sessions[i].CheckInTime.After(sessions[j].CheckInTime)
		}
		return sessions[i].ID > sessions[j].ID
	})
}

func sortOldestFirst(sessions []attendance.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CheckInTime.Equal(sessions[j].CheckInTime) {
			return sessions[i].CheckInTime.Before(sessions[j].CheckInTime)
		}
		return sessions[i].ID < sessions[j].ID
	})
}
