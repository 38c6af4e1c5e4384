package cli

import (
	"context"
	"fmt"

	"kanban_board/internal/domain"
	"kanban_board/internal/view"

	"github.com/spf13/cobra"
)

// loadAdmin checks the admin flag locally before any admin request is made.
// The server enforces the same rule.
func (a *app) loadAdmin(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	if !u.IsAdmin {
		return domain.ErrForbidden
	}
	return a.admin.Load(ctx)
}

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users (admins only)",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List all users, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadAdmin(cmd.Context()); err != nil {
				return err
			}
			return view.Users(a.env.Out, a.admin.Users(), a.env.Location)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <user>",
		Short: "Grant or revoke admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadAdmin(cmd.Context()); err != nil {
				return err
			}
			p, err := a.admin.Resolve(args[0])
			if err != nil {
				return err
			}
			isAdmin, err := a.admin.ToggleAdmin(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			role := "User"
			if isAdmin {
				role = "Admin"
			}
			fmt.Fprintf(a.env.Out, "%s is now %s.\n", p.Email, role)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <user>",
		Short: "Delete a user and all of their tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadAdmin(cmd.Context()); err != nil {
				return err
			}
			p, err := a.admin.Resolve(args[0])
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes &&
				!a.confirm(fmt.Sprintf("Delete %s? This cannot be undone.", p.Email)) {
				fmt.Fprintln(a.env.Out, "Cancelled.")
				return nil
			}
			if err := a.admin.Delete(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.env.Out, "Deleted %s.\n", p.Email)
			return nil
		},
	}
	rm.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	audit := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.requireUser()
			if err != nil {
				return err
			}
			if !u.IsAdmin {
				return domain.ErrForbidden
			}
			limit, _ := cmd.Flags().GetInt("limit")
			logs, err := a.admin.AuditTrail(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return view.Audit(a.env.Out, logs, a.env.Location)
		},
	}
	audit.Flags().IntP("limit", "n", 50, "Number of entries")

	cmd.AddCommand(users, toggle, rm, audit)
	return cmd
}
