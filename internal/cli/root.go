// Package cli is the kanban terminal client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"kanban_board/internal/admin"
	"kanban_board/internal/backend"
	"kanban_board/internal/board"
	"kanban_board/internal/config"
	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
	"kanban_board/internal/session"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `kanban login` first")

// Env is everything a command run depends on.
type Env struct {
	Config     *config.ClientConfig
	Storage    backend.SessionStorage
	HTTPClient *http.Client
	Logger     *slog.Logger
	Location   *time.Location

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type app struct {
	env   Env
	input *bufio.Reader

	client  *backend.Client
	session *session.Store
	board   *board.Store
	admin   *admin.Store
}

func (a *app) setup(ctx context.Context) error {
	cfg := a.env.Config
	storage := a.env.Storage
	if storage == nil {
		storage = backend.NewFileStorage(cfg.SessionFile)
	}
	hc := a.env.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	a.client = backend.New(backend.Options{
		BaseURL:    cfg.BaseURL,
		HTTPClient: hc,
		Storage:    storage,
		Logger:     a.env.Logger,
	})
	a.session = session.NewStore(a.client, session.Options{
		Retries:    cfg.ProfileRetries,
		RetryDelay: cfg.ProfileRetryDelay,
		Logger:     a.env.Logger,
	})
	a.board = board.NewStore(a.client, a.env.Logger)
	a.admin = admin.NewStore(a.client, a.env.Logger)

	if err := a.session.Start(ctx); err != nil {
		a.env.Logger.Warn("continuing signed out", "error", err)
	}
	return nil
}

func (a *app) teardown() {
	if a.session != nil {
		a.session.Close()
	}
}

func (a *app) requireUser() (*domain.CurrentUser, error) {
	u := a.session.CurrentUser()
	if u == nil {
		return nil, errNotLoggedIn
	}
	return u, nil
}

// loadBoard points the board at the signed-in user and fetches their tasks.
func (a *app) loadBoard(ctx context.Context) (*domain.CurrentUser, error) {
	u, err := a.requireUser()
	if err != nil {
		return nil, err
	}
	if err := a.board.SetUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.env.Err, label)
	line, err := a.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) confirm(question string) bool {
	answer, err := a.prompt(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// NewRootCmd builds the command tree. Each execution gets its own client and stores.
func NewRootCmd(env Env) *cobra.Command {
	if env.Logger == nil {
		env.Logger = logger.Get()
	}
	if env.In == nil {
		env.In = os.Stdin
	}
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	if env.Config == nil {
		env.Config = config.LoadClient()
	}
	a := &app{env: env, input: bufio.NewReader(env.In)}

	root := &cobra.Command{
		Use:           "kanban",
		Short:         "Personal kanban board",
		Long:          "kanban manages your tasks across four lanes: upcoming, ongoing, completed and archived.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
	}
	root.SetIn(env.In)
	root.SetOut(env.Out)
	root.SetErr(env.Err)

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.boardCmd(),
		a.addCmd(),
		a.moveCmd(),
		a.renameCmd(),
		a.rmCmd(),
		a.adminCmd(),
	)
	return root
}

// Execute runs the CLI with cfg and the process's stdio.
func Execute(ctx context.Context, cfg *config.ClientConfig, version string) error {
	root := NewRootCmd(Env{Config: cfg})
	root.Version = version
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", Message(err))
		return err
	}
	return nil
}

// Message is the user-facing text for a command error.
func Message(err error) string {
	switch {
	case errors.Is(err, errNotLoggedIn):
		return err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return "admin access required"
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrEmptyTitle):
		return err.Error()
	default:
		return session.ErrorMessage(err)
	}
}
