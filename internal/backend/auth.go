package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"kanban_board/internal/domain"
)

// OnAuthStateChange registers fn and immediately delivers INITIAL_SESSION with the
// stored session (nil when signed out). Later changes follow in order. The returned
// func unsubscribes and may be called more than once.
func (c *Client) OnAuthStateChange(fn AuthListener) (unsubscribe func()) {
	c.mu.Lock()
	c.loadLocked()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	sess := copySession(c.session)
	c.mu.Unlock()

	fn(domain.EventInitialSession, sess)
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) emit(event domain.AuthEvent, sess *domain.Session) {
	c.mu.Lock()
	fns := make([]AuthListener, 0, len(c.listeners))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event, copySession(sess))
	}
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// loadLocked reads the persisted session once per process.
func (c *Client) loadLocked() {
	if c.loaded {
		return
	}
	c.loaded = true
	s, err := c.storage.Load()
	if err != nil {
		c.log.Warn("could not load stored session", "error", err)
		return
	}
	c.session = s
}

func (c *Client) setSession(s *domain.Session) {
	c.mu.Lock()
	c.loaded = true
	c.session = copySession(s)
	c.mu.Unlock()

	var err error
	if s == nil {
		err = c.storage.Clear()
	} else {
		err = c.storage.Save(s)
	}
	if err != nil {
		c.log.Warn("could not persist session", "error", err)
	}
}

// SignUp creates the account; metadata becomes the user's first/last name.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*domain.Session, error) {
	var sess domain.Session
	body := map[string]any{"email": email, "password": password, "data": metadata}
	if err := c.send(ctx, http.MethodPost, "/auth/v1/signup", nil, body, &sess, ""); err != nil {
		return nil, err
	}
	c.setSession(&sess)
	c.emit(domain.EventSignedIn, &sess)
	return copySession(&sess), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	var sess domain.Session
	q := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/v1/token", q, body, &sess, ""); err != nil {
		return nil, err
	}
	c.setSession(&sess)
	c.emit(domain.EventSignedIn, &sess)
	return copySession(&sess), nil
}

// GetSession returns the current session, refreshing it when the access token is
// about to expire. A rejected refresh signs the client out and returns nil.
func (c *Client) GetSession(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	c.loadLocked()
	sess := copySession(c.session)
	c.mu.Unlock()

	if sess == nil || !sess.Expired(c.now()) {
		return sess, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	c.mu.Lock()
	sess = copySession(c.session)
	c.mu.Unlock()
	if sess == nil || !sess.Expired(c.now()) {
		return sess, nil
	}

	var next domain.Session
	q := url.Values{"grant_type": {"refresh_token"}}
	err := c.send(ctx, http.MethodPost, "/auth/v1/token", q, map[string]string{"refresh_token": sess.RefreshToken}, &next, "")
	if errors.Is(err, domain.ErrUnauthorized) {
		c.log.Info("refresh token rejected, signing out")
		c.setSession(nil)
		c.emit(domain.EventSignedOut, nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.setSession(&next)
	c.emit(domain.EventTokenRefreshed, &next)
	return copySession(&next), nil
}

// SignOut revokes the session remotely and always clears it locally.
func (c *Client) SignOut(ctx context.Context) error {
	sess, err := c.GetSession(ctx)
	if err != nil {
		c.mu.Lock()
		sess = copySession(c.session)
		c.mu.Unlock()
	}

	if sess != nil {
		err = c.send(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, sess.AccessToken)
		if err != nil {
			c.log.Warn("remote sign out failed", "error", err)
		}
	}
	c.setSession(nil)
	c.emit(domain.EventSignedOut, nil)
	return err
}

// User asks the backend who the access token belongs to.
func (c *Client) User(ctx context.Context) (domain.AuthUser, error) {
	var u domain.AuthUser
	err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, &u, true)
	return u, err
}
