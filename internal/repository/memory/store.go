// Package memory keeps all repositories in process memory. It backs the
// STORAGE_DRIVER=memory mode and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/database"
)

// Store holds every table. Repositories returned by its methods share it.
type Store struct {
	mu sync.RWMutex

	// txMu serializes WithinTransaction callers.
	txMu sync.Mutex

	now func() time.Time

	companies     map[string]company.Company
	staff         map[string]staff.Staff
	staffRoutes   map[string][]staff.Location
	sessions      map[string]attendance.Session
	leaves        map[string]leave.Leave
	adminConfig   *sysconfig.SystemConfig
	companyConfig map[string]sysconfig.SystemConfig
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		companies:     make(map[string]company.Company),
		staff:         make(map[string]staff.Staff),
		staffRoutes:   make(map[string][]staff.Location),
		sessions:      make(map[string]attendance.Session),
		leaves:        make(map[string]leave.Leave),
		companyConfig: make(map[string]sysconfig.SystemConfig),
	}
}

// SetClock replaces the clock used for CreatedAt/UpdatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

type txKey struct{}

// undoLog holds one restore step per write made inside a transaction. Steps
// are appended and replayed under Store.mu.
type undoLog struct {
	steps []func()
}

type transactor struct {
	store *Store
}

func NewTransactor(store *Store) database.Transactor {
	return &transactor{store: store}
}

// WithinTransaction runs fn serialized against other transactions and undoes
// its writes when fn returns an error or panics.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*undoLog); ok {
		return fn(ctx)
	}
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	log := &undoLog{}
	defer func() {
		if p := recover(); p != nil {
			t.store.rollback(log)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		t.store.rollback(log)
		return err
	}
	return nil
}

// record registers an undo step when ctx belongs to a transaction. The caller
// must hold s.mu.
func (s *Store) record(ctx context.Context, step func()) {
	if log, ok := ctx.Value(txKey{}).(*undoLog); ok {
		log.steps = append(log.steps, step)
	}
}

func (s *Store) rollback(log *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(log.steps) - 1; i >= 0; i-- {
		log.steps[i]()
	}
}

// PutCompany inserts or replaces a company.
func (s *Store) PutCompany(c company.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
		c.UpdatedAt = c.CreatedAt
	}
	s.companies[c.ID] = c
}

// PutStaff inserts or replaces a staff member.
func (s *Store) PutStaff(st staff.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = s.now()
		st.UpdatedAt = st.CreatedAt
	}
	s.staff[st.ID] = st
}

// PutSession stores a session as is, skipping the one-open-session check.
func (s *Store) PutSession(sess attendance.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.Route = cloneRoute(sess.Route)
	s.sessions[sess.ID] = sess
}

func cloneRoute(route []attendance.RoutePoint) []attendance.RoutePoint {
	if route == nil {
		return nil
	}
	out := make([]attendance.RoutePoint, len(route))
	copy(out, route)
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
