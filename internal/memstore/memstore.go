// Package memstore is an in-memory stand-in for the Postgres schema, used by tests
// that exercise the services and the HTTP surface without a database. It mirrors
// the triggers: an account insert creates its profile, and a profile delete removes
// the account with its sessions and tasks.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kanban_board/internal/domain"

	"github.com/google/uuid"
)

type DB struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	sessions map[string]*domain.RefreshSession
	profiles map[string]*domain.Profile
	tasks    map[string]*domain.Task
	audit    []*domain.AuditLog
	clock    time.Time
}

func New() *DB {
	return &DB{
		accounts: make(map[string]*domain.Account),
		sessions: make(map[string]*domain.RefreshSession),
		profiles: make(map[string]*domain.Profile),
		tasks:    make(map[string]*domain.Task),
		clock:    time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so created_at ordering is deterministic.
func (db *DB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *DB) Accounts() *Accounts { return &Accounts{db} }
func (db *DB) Sessions() *Sessions { return &Sessions{db} }
func (db *DB) Profiles() *Profiles { return &Profiles{db} }
func (db *DB) Tasks() *Tasks       { return &Tasks{db} }
func (db *DB) Audit() *Audit       { return &Audit{db} }

// SeedProfile inserts a profile (and a bare account) directly.
func (db *DB) SeedProfile(p domain.Profile) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = db.tick()
	}
	db.profiles[p.ID] = &p
	if _, ok := db.accounts[p.ID]; !ok {
		db.accounts[p.ID] = &domain.Account{ID: p.ID, Email: p.Email, CreatedAt: p.CreatedAt}
	}
}

type Accounts struct{ db *DB }

func (a *Accounts) Create(_ context.Context, acc *domain.Account) error {
	db := a.db
	db.mu.Lock()
	defer db.mu.Unlock()

	email := strings.ToLower(acc.Email)
	for _, x := range db.accounts {
		if x.Email == email {
			return domain.ErrEmailTaken
		}
	}
	acc.ID = uuid.NewString()
	acc.Email = email
	acc.CreatedAt = db.tick()
	cp := *acc
	db.accounts[acc.ID] = &cp

	db.profiles[acc.ID] = &domain.Profile{
		ID:        acc.ID,
		FirstName: acc.Metadata[domain.MetaFirstName],
		LastName:  acc.Metadata[domain.MetaLastName],
		Email:     email,
		CreatedAt: acc.CreatedAt,
	}
	return nil
}

func (a *Accounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	db := a.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, x := range db.accounts {
		if x.Email == strings.ToLower(email) {
			cp := *x
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (a *Accounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	db := a.db
	db.mu.Lock()
	defer db.mu.Unlock()
	x, ok := db.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *x
	return &cp, nil
}

type Sessions struct{ db *DB }

func (s *Sessions) Create(_ context.Context, rs *domain.RefreshSession) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.accounts[rs.UserID]; !ok {
		return domain.ErrNotFound
	}
	rs.CreatedAt = db.tick()
	cp := *rs
	db.sessions[rs.Token] = &cp
	return nil
}

func (s *Sessions) Get(_ context.Context, token string) (*domain.RefreshSession, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	rs, ok := db.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rs
	return &cp, nil
}

func (s *Sessions) Revoke(_ context.Context, token string) (bool, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	rs, ok := db.sessions[token]
	if !ok || rs.Revoked {
		return false, nil
	}
	rs.Revoked = true
	return true, nil
}

func (s *Sessions) RevokeAll(_ context.Context, userID string) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, rs := range db.sessions {
		if rs.UserID == userID {
			rs.Revoked = true
		}
	}
	return nil
}

type Profiles struct{ db *DB }

func (p *Profiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	db := p.db
	db.mu.Lock()
	defer db.mu.Unlock()
	x, ok := db.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (p *Profiles) List(_ context.Context, ascending bool) ([]*domain.Profile, error) {
	db := p.db
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]*domain.Profile, 0, len(db.profiles))
	for _, x := range db.profiles {
		cp := *x
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (p *Profiles) SetAdmin(_ context.Context, id string, isAdmin bool) (*domain.Profile, error) {
	db := p.db
	db.mu.Lock()
	defer db.mu.Unlock()
	x, ok := db.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	x.IsAdmin = isAdmin
	cp := *x
	return &cp, nil
}

// Delete cascades like on_profile_deleted.
func (p *Profiles) Delete(_ context.Context, id string) error {
	db := p.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.profiles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(db.profiles, id)
	delete(db.accounts, id)
	for tok, rs := range db.sessions {
		if rs.UserID == id {
			delete(db.sessions, tok)
		}
	}
	for tid, t := range db.tasks {
		if t.UserID == id {
			delete(db.tasks, tid)
		}
	}
	return nil
}

type Tasks struct{ db *DB }

func (t *Tasks) ListByUser(_ context.Context, userID string, ascending bool) ([]*domain.Task, error) {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	out := []*domain.Task{}
	for _, x := range db.tasks {
		if x.UserID == userID {
			cp := *x
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (t *Tasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	x, ok := db.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *x
	return &cp, nil
}

func (t *Tasks) Create(_ context.Context, task *domain.Task) error {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.accounts[task.UserID]; !ok {
		return domain.ErrNotFound
	}
	if !task.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	task.ID = uuid.NewString()
	task.CreatedAt = db.tick()
	cp := *task
	db.tasks[task.ID] = &cp
	return nil
}

func (t *Tasks) Update(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	x, ok := db.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	*x = patch.Apply(*x)
	cp := *x
	return &cp, nil
}

func (t *Tasks) Delete(_ context.Context, id string) error {
	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(db.tasks, id)
	return nil
}

type Audit struct{ db *DB }

func (a *Audit) Create(_ context.Context, l *domain.AuditLog) error {
	db := a.db
	db.mu.Lock()
	defer db.mu.Unlock()
	l.ID = int64(len(db.audit) + 1)
	l.CreatedAt = db.tick()
	cp := *l
	db.audit = append(db.audit, &cp)
	return nil
}

func (a *Audit) GetByUserID(_ context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	db := a.db
	db.mu.Lock()
	defer db.mu.Unlock()
	out := []*domain.AuditLog{}
	for i := len(db.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if db.audit[i].UserID == userID {
			cp := *db.audit[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (a *Audit) GetRecent(_ context.Context, limit int) ([]*domain.AuditLog, error) {
	db := a.db
	db.mu.Lock()
	defer db.mu.Unlock()
	out := []*domain.AuditLog{}
	for i := len(db.audit) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *db.audit[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Actions lists audit actions oldest first.
func (a *Audit) Actions() []string {
	db := a.db
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]string, len(db.audit))
	for i, l := range db.audit {
		out[i] = l.Action
	}
	return out
}
