// Package session holds the signed-in user's identity for the client.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

type State string

const (
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// AuthBackend is the part of the backend client the store needs.
type AuthBackend interface {
	GetSession(ctx context.Context) (*domain.Session, error)
	OnAuthStateChange(fn func(domain.AuthEvent, *domain.Session)) (unsubscribe func())
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*domain.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

type Options struct {
	// Retries is how many extra profile fetches are made before falling back to
	// session metadata. The profile row is written by a trigger and may lag sign-up.
	Retries    int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

type Store struct {
	backend AuthBackend
	retries int
	delay   time.Duration
	log     *slog.Logger

	mu             sync.RWMutex
	state          State
	user           *domain.CurrentUser
	epoch          uint64
	initialHandled bool
	listeners      map[int]func(*domain.CurrentUser)
	nextID         int
	ctx            context.Context
	cancel         context.CancelFunc
	unsubscribe    func()

	// busy is held by the derivation started in busyEpoch. A sign-out bumps the
	// epoch, so a derivation left over from before it no longer blocks new ones.
	busy      bool
	busyEpoch uint64
}

func NewStore(backend AuthBackend, opts Options) *Store {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		backend:   backend,
		retries:   opts.Retries,
		delay:     opts.RetryDelay,
		log:       log.With("component", "session"),
		state:     StateLoading,
		listeners: make(map[int]func(*domain.CurrentUser)),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start loads the current session, derives the user and subscribes to auth changes.
// A failed session lookup leaves the store unauthenticated and is returned.
func (s *Store) Start(ctx context.Context) error {
	sess, err := s.backend.GetSession(ctx)
	switch {
	case err != nil:
		s.log.Warn("could not load session", "error", err)
		s.clear()
	case sess != nil:
		s.derive(ctx, sess)
		s.markInitialHandled()
	default:
		s.clear()
		s.markInitialHandled()
	}

	unsubscribe := s.backend.OnAuthStateChange(s.handleEvent)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return err
}

func (s *Store) markInitialHandled() {
	s.mu.Lock()
	s.initialHandled = true
	s.mu.Unlock()
}

// Close stops listening for auth changes and abandons in-flight derivations.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.cancel()
}

func (s *Store) handleEvent(event domain.AuthEvent, sess *domain.Session) {
	if event == domain.EventSignedOut || sess == nil {
		s.clear()
		return
	}

	if event == domain.EventInitialSession {
		s.mu.Lock()
		handled := s.initialHandled
		s.initialHandled = true
		s.mu.Unlock()
		if handled {
			return
		}
	}

	s.derive(s.ctx, sess)
}

// derive resolves the user for sess. Overlapping calls are dropped, and a result
// that lands after a sign-out is discarded.
func (s *Store) derive(ctx context.Context, sess *domain.Session) {
	s.mu.Lock()
	epoch := s.epoch
	if s.busy && s.busyEpoch == epoch {
		s.mu.Unlock()
		s.log.Debug("session handling already in progress, skipping")
		return
	}
	s.busy = true
	s.busyEpoch = epoch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.busyEpoch == epoch {
			s.busy = false
		}
		s.mu.Unlock()
	}()

	user := s.resolveUser(ctx, sess)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Debug("discarding profile resolved after sign-out", "user_id", user.ID)
		return
	}
	s.user = &user
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.notify(&user)
}

func (s *Store) resolveUser(ctx context.Context, sess *domain.Session) domain.CurrentUser {
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 && !sleep(ctx, s.delay) {
			break
		}
		p, err := s.backend.GetProfile(ctx, sess.User.ID)
		if err == nil && p != nil {
			u := domain.DeriveUser(*p)
			u.Email = sess.User.Email
			return u
		}
		s.log.Debug("profile not available", "user_id", sess.User.ID, "attempt", attempt+1, "error", err)
	}

	s.log.Warn("profile not found, using session metadata", "user_id", sess.User.ID)
	return domain.FallbackUser(sess.User)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// clear drops the user immediately. Bumping the epoch invalidates any derivation
// still waiting on the network.
func (s *Store) clear() {
	s.mu.Lock()
	s.epoch++
	hadUser := s.user != nil
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	if hadUser {
		s.notify(nil)
	}
}

func (s *Store) notify(u *domain.CurrentUser) {
	s.mu.RLock()
	fns := make([]func(*domain.CurrentUser), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		if u == nil {
			fn(nil)
			continue
		}
		cp := *u
		fn(&cp)
	}
}

// OnUserChange calls fn with the new user (nil on sign-out) after every change.
func (s *Store) OnUserChange(fn func(*domain.CurrentUser)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) CurrentUser() *domain.CurrentUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SignUp validates the form and creates the account. The user is derived through
// the SIGNED_IN event, or here if nothing is subscribed.
func (s *Store) SignUp(ctx context.Context, firstName, lastName, email, password string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || lastName == "" || email == "" || password == "" {
		return domain.ErrMissingFields
	}
	if len(password) < domain.MinPasswordLength {
		return domain.ErrWeakPassword
	}

	sess, err := s.backend.SignUp(ctx, email, password, map[string]string{
		domain.MetaFirstName: firstName,
		domain.MetaLastName:  lastName,
	})
	if err != nil {
		s.log.Warn("sign up failed", "error", err)
		return err
	}
	s.ensureDerived(ctx, sess)
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrMissingFields
	}
	sess, err := s.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.log.Warn("login failed", "error", err)
		return err
	}
	s.ensureDerived(ctx, sess)
	return nil
}

func (s *Store) ensureDerived(ctx context.Context, sess *domain.Session) {
	if sess == nil {
		return
	}
	if u := s.CurrentUser(); u != nil && u.ID == sess.User.ID {
		return
	}
	s.derive(ctx, sess)
}

// Logout signs out remotely; local state is cleared even when that fails.
func (s *Store) Logout(ctx context.Context) error {
	err := s.backend.SignOut(ctx)
	if err != nil {
		s.log.Warn("remote sign out failed", "error", err)
	}
	s.clear()
	return err
}

// ErrorMessage is the text shown for an auth failure.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid login credentials"
	case errors.Is(err, domain.ErrEmailTaken):
		return "User already registered"
	case errors.Is(err, domain.ErrMissingFields):
		return "Please fill in all required fields"
	case errors.Is(err, domain.ErrWeakPassword):
		return "Password must be at least 6 characters"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Your session has expired, please log in again"
	default:
		return "Something went wrong: " + err.Error()
	}
}
