package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kanban_board/internal/domain"

	"github.com/gorilla/websocket"
)

type realtimeMessage struct {
	Type   string           `json:"type"`
	Event  domain.AuthEvent `json:"event,omitempty"`
	UserID string           `json:"user_id,omitempty"`
}

// ErrNoSession is returned by ListenRealtime when nobody is signed in.
var ErrNoSession = errors.New("no active session")

func (c *Client) realtimeURL(token string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/realtime/v1"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

// ListenRealtime subscribes to the server's auth events for the signed-in user and
// re-emits them to OnAuthStateChange listeners. It returns nil when ctx is cancelled
// or the server signs the user out.
func (c *Client) ListenRealtime(ctx context.Context) error {
	sess, err := c.GetSession(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNoSession
	}

	target, err := c.realtimeURL(sess.AccessToken)
	if err != nil {
		return err
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment}
	conn, res, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if res != nil && res.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("realtime: %w", domain.ErrUnauthorized)
		}
		return fmt.Errorf("realtime dial: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg realtimeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("realtime read: %w", err)
		}
		if msg.Type != "auth" {
			continue
		}

		switch msg.Event {
		case domain.EventSignedOut:
			c.log.Info("signed out by server")
			c.setSession(nil)
			c.emit(domain.EventSignedOut, nil)
			return nil
		default:
			c.mu.Lock()
			current := copySession(c.session)
			c.mu.Unlock()
			c.emit(msg.Event, current)
		}
	}
}
