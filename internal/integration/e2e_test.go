package integration

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"kanban_board/internal/admin"
	"kanban_board/internal/backend"
	"kanban_board/internal/board"
	"kanban_board/internal/config"
	"kanban_board/internal/db"
	"kanban_board/internal/domain"
	httpserver "kanban_board/internal/http"
	"kanban_board/internal/logger"
	"kanban_board/internal/repository"
	"kanban_board/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// startServer runs the real router over Postgres. Skipped without DATABASE_URL.
func startServer(t *testing.T) (*httptest.Server, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	dbp, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(dbp.Close)

	if _, err := db.Migrate(context.Background(), dbp); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppVersion:      "e2e",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
		AuthRateLimit:   100,
		AuthRateWindow:  time.Minute,
	}
	deps, _ := httpserver.NewDeps(cfg, httpserver.Stores{
		Accounts: repository.NewAccountRepository(dbp),
		Sessions: repository.NewSessionRepository(dbp),
		Profiles: repository.NewProfileRepository(dbp),
		Tasks:    repository.NewTaskRepository(dbp),
		Audit:    repository.NewAuditRepository(dbp),
	}, dbp, nil)

	ts := httptest.NewServer(httpserver.NewRouter(deps))
	t.Cleanup(ts.Close)
	return ts, dbp
}

func newSession(t *testing.T, ts *httptest.Server) (*backend.Client, *session.Store) {
	t.Helper()
	client := backend.New(backend.Options{BaseURL: ts.URL, Logger: logger.Discard()})
	store := session.NewStore(client, session.Options{Retries: 3, RetryDelay: 50 * time.Millisecond, Logger: logger.Discard()})
	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("start session: %v", err)
	}
	t.Cleanup(store.Close)
	return client, store
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@example.com"
}

func TestE2E_SignUpBoardAndAdminCascade(t *testing.T) {
	ts, dbp := startServer(t)
	ctx := context.Background()

	// a user signs up; the trigger-created profile feeds the derived identity
	userClient, userSession := newSession(t, ts)
	userEmail := uniqueEmail("grace")
	if err := userSession.SignUp(ctx, "Grace", "Hopper", userEmail, "cobol-1959"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	u := userSession.CurrentUser()
	if u == nil || u.Initials != "GH" || u.Email != userEmail || u.IsAdmin {
		t.Fatalf("unexpected current user: %+v", u)
	}

	tasks := board.NewStore(userClient, logger.Discard())
	if err := tasks.SetUser(ctx, u); err != nil {
		t.Fatalf("load board: %v", err)
	}
	created, err := tasks.Add(ctx, "compile", domain.StatusUpcoming)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := tasks.Move(ctx, created.ID, domain.StatusDone); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := tasks.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got, err := tasks.Resolve(created.ID)
	if err != nil || got.Status != domain.StatusDone || got.Title != "compile" {
		t.Fatalf("task after move: %+v %v", got, err)
	}

	// an admin deletes the user; their realtime listener is told to sign out
	_, adminSession := newSession(t, ts)
	adminEmail := uniqueEmail("root")
	if err := adminSession.SignUp(ctx, "Root", "Admin", adminEmail, "root-pass"); err != nil {
		t.Fatalf("admin sign up: %v", err)
	}
	adminID := adminSession.CurrentUser().ID
	if _, err := repository.NewProfileRepository(dbp).SetAdmin(ctx, adminID, true); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	adminClient := backend.New(backend.Options{BaseURL: ts.URL, Logger: logger.Discard()})
	if _, err := adminClient.SignInWithPassword(ctx, adminEmail, "root-pass"); err != nil {
		t.Fatalf("admin sign in: %v", err)
	}

	listenCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	listening := make(chan error, 1)
	go func() { listening <- userClient.ListenRealtime(listenCtx) }()
	// give the socket a moment to register before publishing
	time.Sleep(200 * time.Millisecond)

	panel := admin.NewStore(adminClient, logger.Discard())
	if err := panel.Load(ctx); err != nil {
		t.Fatalf("load users: %v", err)
	}
	victim, err := panel.Resolve(userEmail)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	if err := panel.Delete(ctx, victim.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	select {
	case err := <-listening:
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
	case <-listenCtx.Done():
		t.Fatal("user was not signed out over realtime")
	}
	if userSession.IsAuthenticated() {
		t.Fatal("session store still holds the deleted user")
	}

	// the delete cascaded to the user's tasks
	var n int
	if err := dbp.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE user_id = $1`, victim.ID).Scan(&n); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected tasks to cascade, found %d", n)
	}

	logs, err := panel.AuditTrail(ctx, 20)
	if err != nil {
		t.Fatalf("audit trail: %v", err)
	}
	found := false
	for _, l := range logs {
		if l.Action == domain.AuditActionAdminDeleteUser && l.UserID == adminID {
			found = true
		}
	}
	if !found {
		t.Fatal("admin delete was not audited")
	}
}

func TestE2E_WrongPasswordAndDuplicateEmail(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()

	_, s := newSession(t, ts)
	email := uniqueEmail("dup")
	if err := s.SignUp(ctx, "Dup", "User", email, "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	_ = s.Logout(ctx)

	if err := s.SignUp(ctx, "Dup", "Again", strings.ToUpper(email), "secret1"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := s.Login(ctx, email, "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
