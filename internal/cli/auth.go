package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"subscription_console/internal/forms"
	"subscription_console/pkg/apperrors"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var form forms.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if form.Email == "" {
				form.Email = readLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Email: ")
			}
			if form.Password == "" {
				form.Password = readLine(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: ")
			}

			c := rt.console
			cleaned, err := form.Validate(c.Validator)
			if err != nil {
				c.Notify.Report(cmd.Context(), err)
				return err
			}
			s, err := c.Session.Login(cmd.Context(), cleaned.Email, cleaned.Password)
			if err != nil {
				c.Notify.Report(cmd.Context(), err)
				return err
			}
			c.Notify.Success(cmd.Context(), fmt.Sprintf("Welcome, %s!", s.User.DisplayName()))
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", s.User.Email, s.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newRegisterCommand(rt *runtime) *cobra.Command {
	var form forms.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			if form.Password == "" {
				form.Password = readLine(in, out, "Password: ")
			}
			if form.ConfirmPassword == "" {
				form.ConfirmPassword = readLine(in, out, "Confirm password: ")
			}

			c := rt.console
			req, err := form.ToRequest(c.Validator)
			if err != nil {
				c.Notify.Report(cmd.Context(), err)
				return err
			}
			s, err := c.Session.Register(cmd.Context(), req)
			if err != nil {
				c.Notify.Report(cmd.Context(), err)
				return err
			}
			c.Notify.Success(cmd.Context(), "Registration successful!")
			fmt.Fprintf(out, "Signed in as %s (%s)\n", s.User.Email, s.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Username, "username", "", "display name")
	cmd.Flags().StringVar(&form.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "password again")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.console.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := rt.console.Session.Current()
			if s == nil {
				return apperrors.ErrNotAuthenticated
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Email:\t%s\n", s.User.Email)
			fmt.Fprintf(tw, "Username:\t%s\n", s.User.Username)
			fmt.Fprintf(tw, "Role:\t%s\n", s.User.Role)
			if !s.ExpiresAt.IsZero() {
				fmt.Fprintf(tw, "Expires:\t%s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}
