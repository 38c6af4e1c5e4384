package cli

import (
	"fmt"

	"kanban_board/internal/view"

	"github.com/spf13/cobra"
)

func (a *app) password(cmd *cobra.Command) (string, error) {
	pw, _ := cmd.Flags().GetString("password")
	if pw != "" {
		return pw, nil
	}
	return a.prompt("Password: ")
}

func (a *app) signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			first, _ := cmd.Flags().GetString("first")
			last, _ := cmd.Flags().GetString("last")
			email, _ := cmd.Flags().GetString("email")
			pw, err := a.password(cmd)
			if err != nil {
				return err
			}
			if err := a.session.SignUp(cmd.Context(), first, last, email, pw); err != nil {
				return err
			}
			return a.printIdentity(cmd)
		},
	}
	cmd.Flags().String("first", "", "First name")
	cmd.Flags().String("last", "", "Last name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			pw, err := a.password(cmd)
			if err != nil {
				return err
			}
			if err := a.session.Login(cmd.Context(), email, pw); err != nil {
				return err
			}
			return a.printIdentity(cmd)
		},
	}
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.env.Out, "Not logged in.")
				return nil
			}
			err := a.session.Logout(cmd.Context())
			fmt.Fprintln(a.env.Out, "Signed out.")
			if err != nil {
				a.env.Logger.Warn("server did not confirm sign out", "error", err)
			}
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printIdentity(cmd)
		},
	}
}

func (a *app) printIdentity(*cobra.Command) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}
	view.Header(a.env.Out, u.DisplayName(), u.Initials, u.IsAdmin)
	fmt.Fprintln(a.env.Out, u.Email)
	return nil
}
