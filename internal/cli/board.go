package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"kanban_board/internal/domain"
	"kanban_board/internal/view"

	"github.com/spf13/cobra"
)

func (a *app) render(u *domain.CurrentUser) error {
	name, initials := a.board.Owner()
	view.Header(a.env.Out, name, initials, u != nil && u.IsAdmin)
	fmt.Fprintln(a.env.Out)
	return view.Board(a.env.Out, a.board.Lanes(), a.env.Location)
}

func (a *app) boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show your tasks by lane",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.render(u); err != nil {
				return err
			}
			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				return a.watch(cmd.Context())
			}
			return nil
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Stay connected and redraw on account changes")
	return cmd
}

// watch redraws the board whenever the server pushes an auth event for this user,
// and stops once the user is signed out.
func (a *app) watch(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := newUserFeed()
	unsubscribe := a.session.OnUserChange(feed.push)
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- a.client.ListenRealtime(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-feed.signedOut:
			_ = a.board.SetUser(ctx, nil)
			fmt.Fprintln(a.env.Out, "Signed out.")
			return nil
		case u := <-feed.changes:
			if feed.isSignedOut() {
				continue
			}
			if err := a.board.SetUser(ctx, u); err != nil {
				a.env.Logger.Warn("refresh after account change failed", "error", err)
			}
			fmt.Fprintln(a.env.Out)
			if err := a.render(u); err != nil {
				return err
			}
		case err := <-done:
			if err != nil {
				return err
			}
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.env.Out, "Signed out.")
			}
			return nil
		}
	}
}

// userFeed hands session changes to the watch loop. Updates coalesce to the newest
// identity; a sign-out is never dropped.
type userFeed struct {
	changes   chan *domain.CurrentUser
	signedOut chan struct{}
	once      sync.Once
}

func newUserFeed() *userFeed {
	return &userFeed{
		changes:   make(chan *domain.CurrentUser, 1),
		signedOut: make(chan struct{}),
	}
}

func (f *userFeed) push(u *domain.CurrentUser) {
	if u == nil {
		f.once.Do(func() { close(f.signedOut) })
		return
	}
	select {
	case <-f.changes:
	default:
	}
	select {
	case f.changes <- u:
	default:
	}
}

func (f *userFeed) isSignedOut() bool {
	select {
	case <-f.signedOut:
		return true
	default:
		return false
	}
}

func (a *app) addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("status")
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return err
			}
			if _, err := a.loadBoard(cmd.Context()); err != nil {
				return err
			}
			t, err := a.board.Add(cmd.Context(), strings.Join(args, " "), status)
			if err != nil {
				return err
			}
			view.Task(a.env.Out, *t, a.env.Location)
			return nil
		},
	}
	cmd.Flags().StringP("status", "s", string(domain.StatusUpcoming), "Lane: upcoming, inprogress, inreview, done")
	return cmd
}

func (a *app) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a task to another lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.loadBoard(cmd.Context()); err != nil {
				return err
			}
			t, err := a.board.Resolve(args[0])
			if err != nil {
				return err
			}
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.board.Move(cmd.Context(), t.ID, status); err != nil {
				return err
			}
			moved, err := a.board.Resolve(t.ID)
			if err != nil {
				return err
			}
			view.Task(a.env.Out, moved, a.env.Location)
			return nil
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change a task's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.loadBoard(cmd.Context()); err != nil {
				return err
			}
			t, err := a.board.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := a.board.Rename(cmd.Context(), t.ID, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			renamed, err := a.board.Resolve(t.ID)
			if err != nil {
				return err
			}
			view.Task(a.env.Out, renamed, a.env.Location)
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.loadBoard(cmd.Context()); err != nil {
				return err
			}
			t, err := a.board.Resolve(args[0])
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes && !a.confirm(fmt.Sprintf("Delete %q?", t.Title)) {
				fmt.Fprintln(a.env.Out, "Cancelled.")
				return nil
			}
			if err := a.board.Delete(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.env.Out, "Deleted %s.\n", view.ShortID(t.ID))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
