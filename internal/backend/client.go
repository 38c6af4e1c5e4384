// Package backend is the client SDK for the kanban backend: auth sessions, the
// profiles and tasks tables, and the realtime auth-event channel.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Storage    SessionStorage
	Logger     *slog.Logger
}

// AuthListener receives session changes. sess is nil after sign-out.
type AuthListener = func(event domain.AuthEvent, sess *domain.Session)

type Client struct {
	baseURL string
	http    *http.Client
	storage SessionStorage
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	session   *domain.Session
	loaded    bool
	listeners map[int]AuthListener
	nextID    int

	// serializes refreshes so a rotated token is never presented twice
	refreshMu sync.Mutex
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	st := opts.Storage
	if st == nil {
		st = &MemoryStorage{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      hc,
		storage:   st,
		log:       log,
		now:       time.Now,
		listeners: make(map[int]AuthListener),
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// do sends one request. With auth set, the current access token is attached and
// refreshed first when it is about to expire.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, auth bool) error {
	var token string
	if auth {
		sess, err := c.GetSession(ctx)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("%s %s: %w", method, path, domain.ErrUnauthorized)
		}
		token = sess.AccessToken
	}
	return c.send(ctx, method, path, query, body, out, token)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, token string) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
