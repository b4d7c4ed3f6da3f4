package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/domain"
)

func newLoginCmd() *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			u, err := a.Session.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", u.FullName, u.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var r domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account and sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if r.ConfirmPassword == "" {
				r.ConfirmPassword = r.Password
			}
			u, err := a.Session.Register(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", u.FullName)
			return nil
		}),
	}
	cmd.Flags().StringVar(&r.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&r.Email, "email", "", "email")
	cmd.Flags().StringVar(&r.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&r.ConfirmPassword, "confirm-password", "", "repeat the password")
	cmd.Flags().StringVar(&r.Address, "address", "", "default delivery address")
	cmd.Flags().StringVar(&r.ContactNumber, "phone", "", "contact number")
	for _, f := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			a.Session.Logout(cmd.Context())
			return nil
		}),
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			u, ok := a.Session.User()
			if outputFormat(cmd) == outputJSON {
				if !ok {
					return printJSON(cmd.OutOrStdout(), nil)
				}
				return printJSON(cmd.OutOrStdout(), u)
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "guest (%s)\n", a.Session.State())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", u.FullName, u.Email, u.Role)
			return nil
		}),
	}
}
