package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kanban_board/internal/config"
	"kanban_board/internal/domain"
	"kanban_board/internal/http/handlers"
	"kanban_board/internal/memstore"

	"github.com/gin-gonic/gin"
)

type testAPI struct {
	t      *testing.T
	router stdhttp.Handler
	db     *memstore.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppVersion:      "test",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		AuthRateLimit:   100,
		AuthRateWindow:  time.Minute,
	}
	db := memstore.New()
	deps, _ := NewDeps(cfg, Stores{
		Accounts: db.Accounts(),
		Sessions: db.Sessions(),
		Profiles: db.Profiles(),
		Tasks:    db.Tasks(),
		Audit:    db.Audit(),
	}, handlers.PingFunc(func(context.Context) error { return nil }), nil)
	return &testAPI{t: t, router: NewRouter(deps), db: db}
}

func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func (a *testAPI) signUp(email, first, last string) domain.Session {
	a.t.Helper()
	var sess domain.Session
	code := a.do(stdhttp.MethodPost, "/auth/v1/signup", "", map[string]any{
		"email":    email,
		"password": "secret1",
		"data":     map[string]string{"first_name": first, "last_name": last},
	}, &sess)
	if code != stdhttp.StatusOK {
		a.t.Fatalf("signup %s: status %d", email, code)
	}
	return sess
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	sess := api.signUp("ada@example.com", "Ada", "Lovelace")
	if sess.AccessToken == "" || sess.User.ID == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	var dup apiError
	code := api.do(stdhttp.MethodPost, "/auth/v1/signup", "", map[string]any{"email": "ada@example.com", "password": "secret1"}, &dup)
	if code != stdhttp.StatusConflict || dup.Code != "email_taken" {
		t.Fatalf("duplicate signup: %d %+v", code, dup)
	}

	var short apiError
	code = api.do(stdhttp.MethodPost, "/auth/v1/signup", "", map[string]any{"email": "b@example.com", "password": "123"}, &short)
	if code != stdhttp.StatusBadRequest || short.Code != "weak_password" {
		t.Fatalf("weak password: %d %+v", code, short)
	}

	var bad apiError
	code = api.do(stdhttp.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]any{"email": "ada@example.com", "password": "nope"}, &bad)
	if code != stdhttp.StatusUnauthorized || bad.Code != "invalid_credentials" {
		t.Fatalf("bad password: %d %+v", code, bad)
	}

	var login domain.Session
	if code := api.do(stdhttp.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]any{"email": "ada@example.com", "password": "secret1"}, &login); code != stdhttp.StatusOK {
		t.Fatalf("login: %d", code)
	}

	var user domain.AuthUser
	if code := api.do(stdhttp.MethodGet, "/auth/v1/user", login.AccessToken, nil, &user); code != stdhttp.StatusOK {
		t.Fatalf("user: %d", code)
	}
	if user.Email != "ada@example.com" || user.Metadata[domain.MetaFirstName] != "Ada" {
		t.Fatalf("unexpected user: %+v", user)
	}

	var refreshed domain.Session
	if code := api.do(stdhttp.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", map[string]any{"refresh_token": login.RefreshToken}, &refreshed); code != stdhttp.StatusOK {
		t.Fatalf("refresh: %d", code)
	}

	if code := api.do(stdhttp.MethodPost, "/auth/v1/logout", refreshed.AccessToken, nil, nil); code != stdhttp.StatusNoContent {
		t.Fatalf("logout: %d", code)
	}
	if code := api.do(stdhttp.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", map[string]any{"refresh_token": refreshed.RefreshToken}, nil); code != stdhttp.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected 401 got %d", code)
	}

	if code := api.do(stdhttp.MethodGet, "/auth/v1/user", "", nil, nil); code != stdhttp.StatusUnauthorized {
		t.Fatalf("user without token: expected 401 got %d", code)
	}
}

func TestProfileCreatedBySignUp(t *testing.T) {
	api := newTestAPI(t)
	sess := api.signUp("grace@example.com", "Grace", "Hopper")

	var rows []domain.Profile
	if code := api.do(stdhttp.MethodGet, "/rest/v1/profiles?id=eq."+sess.User.ID, sess.AccessToken, nil, &rows); code != stdhttp.StatusOK {
		t.Fatalf("profiles: %d", code)
	}
	if len(rows) != 1 || rows[0].FirstName != "Grace" || rows[0].IsAdmin {
		t.Fatalf("unexpected profile rows: %+v", rows)
	}

	other := api.signUp("linus@example.com", "Linus", "T")
	rows = nil
	if code := api.do(stdhttp.MethodGet, "/rest/v1/profiles?id="+other.User.ID, sess.AccessToken, nil, &rows); code != stdhttp.StatusOK {
		t.Fatalf("foreign profile: %d", code)
	}
	if len(rows) != 0 {
		t.Fatalf("non-admin read another profile: %+v", rows)
	}
}

func TestTaskEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signUp("alice@example.com", "Alice", "A")
	bob := api.signUp("bob@example.com", "Bob", "B")

	var created domain.Task
	code := api.do(stdhttp.MethodPost, "/rest/v1/tasks", alice.AccessToken, map[string]any{"title": "  ship it ", "user_id": alice.User.ID}, &created)
	if code != stdhttp.StatusCreated {
		t.Fatalf("create: %d", code)
	}
	if created.Title != "ship it" || created.Status != domain.StatusUpcoming {
		t.Fatalf("unexpected task: %+v", created)
	}
	var second domain.Task
	api.do(stdhttp.MethodPost, "/rest/v1/tasks", alice.AccessToken, map[string]any{"title": "second", "status": "inprogress"}, &second)

	var list []domain.Task
	api.do(stdhttp.MethodGet, "/rest/v1/tasks?user_id=eq."+alice.User.ID+"&order=created_at.desc", alice.AccessToken, nil, &list)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	var empty []domain.Task
	api.do(stdhttp.MethodGet, "/rest/v1/tasks?user_id="+alice.User.ID, bob.AccessToken, nil, &empty)
	if len(empty) != 0 {
		t.Fatalf("bob can see alice's tasks: %+v", empty)
	}

	var moved domain.Task
	if code := api.do(stdhttp.MethodPatch, "/rest/v1/tasks/"+created.ID, alice.AccessToken, map[string]any{"status": "inreview"}, &moved); code != stdhttp.StatusOK {
		t.Fatalf("move: %d", code)
	}
	if moved.Status != domain.StatusInReview || moved.Title != "ship it" {
		t.Fatalf("move changed more than status: %+v", moved)
	}

	var bad apiError
	if code := api.do(stdhttp.MethodPatch, "/rest/v1/tasks/"+created.ID, alice.AccessToken, map[string]any{"status": "someday"}, &bad); code != stdhttp.StatusBadRequest || bad.Code != "invalid_status" {
		t.Fatalf("invalid status: %d %+v", code, bad)
	}
	if code := api.do(stdhttp.MethodPatch, "/rest/v1/tasks/"+created.ID, bob.AccessToken, map[string]any{"status": "done"}, nil); code != stdhttp.StatusNotFound {
		t.Fatalf("foreign move: expected 404 got %d", code)
	}

	if code := api.do(stdhttp.MethodDelete, "/rest/v1/tasks/"+created.ID, alice.AccessToken, nil, nil); code != stdhttp.StatusNoContent {
		t.Fatalf("delete: %d", code)
	}
	if code := api.do(stdhttp.MethodDelete, "/rest/v1/tasks/"+created.ID, alice.AccessToken, nil, nil); code != stdhttp.StatusNotFound {
		t.Fatalf("second delete: expected 404 got %d", code)
	}
	if code := api.do(stdhttp.MethodGet, "/rest/v1/tasks?order=title", alice.AccessToken, nil, nil); code != stdhttp.StatusBadRequest {
		t.Fatalf("bad order: expected 400 got %d", code)
	}
}

func TestAdminEndpoints(t *testing.T) {
	api := newTestAPI(t)
	root := api.signUp("root@example.com", "Root", "Admin")
	user := api.signUp("user@example.com", "Plain", "User")
	if _, err := api.db.Profiles().SetAdmin(context.Background(), root.User.ID, true); err != nil {
		t.Fatal(err)
	}

	if code := api.do(stdhttp.MethodPatch, "/rest/v1/profiles/"+root.User.ID, user.AccessToken, map[string]any{"is_admin": false}, nil); code != stdhttp.StatusForbidden {
		t.Fatalf("non-admin toggle: expected 403 got %d", code)
	}
	if code := api.do(stdhttp.MethodGet, "/rest/v1/audit_logs", user.AccessToken, nil, nil); code != stdhttp.StatusForbidden {
		t.Fatalf("non-admin audit: expected 403 got %d", code)
	}

	var all []domain.Profile
	api.do(stdhttp.MethodGet, "/rest/v1/profiles?order=created_at.desc", root.AccessToken, nil, &all)
	if len(all) != 2 || all[0].ID != user.User.ID {
		t.Fatalf("admin list: %+v", all)
	}

	var toggled domain.Profile
	if code := api.do(stdhttp.MethodPatch, "/rest/v1/profiles/"+user.User.ID, root.AccessToken, map[string]any{"is_admin": true}, &toggled); code != stdhttp.StatusOK || !toggled.IsAdmin {
		t.Fatalf("toggle: %d %+v", code, toggled)
	}

	var logs []domain.AuditLog
	if code := api.do(stdhttp.MethodGet, "/rest/v1/audit_logs?limit=1", root.AccessToken, nil, &logs); code != stdhttp.StatusOK {
		t.Fatalf("audit: %d", code)
	}
	if len(logs) != 1 || logs[0].Action != domain.AuditActionAdminGrant {
		t.Fatalf("unexpected audit logs: %+v", logs)
	}

	if code := api.do(stdhttp.MethodDelete, "/rest/v1/profiles/"+user.User.ID, root.AccessToken, nil, nil); code != stdhttp.StatusNoContent {
		t.Fatalf("delete profile: %d", code)
	}
	if code := api.do(stdhttp.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]any{"email": "user@example.com", "password": "secret1"}, nil); code != stdhttp.StatusUnauthorized {
		t.Fatalf("deleted account can still sign in: %d", code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		if code := api.do(stdhttp.MethodGet, path, "", nil, nil); code != stdhttp.StatusOK {
			t.Fatalf("%s: %d", path, code)
		}
	}
	if code := api.do(stdhttp.MethodGet, "/metrics", "", nil, nil); code != stdhttp.StatusOK {
		t.Fatalf("metrics: %d", code)
	}
}
