package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
)

var (
	loginEmail       string
	loginPassword    string
	registerUsername string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(d *Dependencies) error {
			if err := requireGuest(d, auth.PathLogin); err != nil {
				return err
			}
			s, err := d.Auth.Login(cmd.Context(), auth.LoginRequest{Email: loginEmail, Password: loginPassword})
			if err != nil {
				return err
			}
			d.Printer.Success("Welcome back, %s (%s)", s.User.Username, d.Printer.RoleBadge(s.User.Role))
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(d *Dependencies) error {
			if err := requireGuest(d, auth.PathRegister); err != nil {
				return err
			}
			u, err := d.Auth.Register(cmd.Context(), auth.RegisterRequest{
				Username: registerUsername,
				Email:    registerEmail,
				Password: registerPassword,
			})
			if err != nil {
				return err
			}
			d.Printer.Success("Registered %s as %s. You can now log in.", u.Username, u.Role)
			return nil
		})
	},
}

// requireGuest runs the page guard for path and refuses when it redirects,
// which happens while a session is held.
func requireGuest(d *Dependencies, path string) error {
	res, err := d.Navigator.Navigate(path)
	if err != nil {
		return err
	}
	if !res.Redirected() {
		return nil
	}
	if u := d.Store.Get().User; u != nil {
		return internal.NewBadRequestError(fmt.Sprintf("already logged in as %s; run `hrportal logout` first", u.Username))
	}
	return internal.NewBadRequestError("already logged in; run `hrportal logout` first")
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(d *Dependencies) error {
			if !d.Store.Get().Authenticated() {
				d.Printer.Info("Not logged in")
				return nil
			}
			if err := d.Auth.Logout(cmd.Context()); err != nil {
				d.Printer.Warning("backend logout failed, local session cleared: %v", err)
				return nil
			}
			d.Printer.Success("Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd.Context(), func(d *Dependencies) error {
			s := d.Store.Get()
			if !s.Authenticated() {
				return internal.ErrNotLoggedIn
			}

			d.Printer.Print("%s <%s>", d.Printer.Bold(s.User.Username), s.User.Email)
			d.Printer.Print("role:    %s", d.Printer.RoleBadge(s.User.Role))
			d.Printer.Print("id:      %s", s.User.ID)
			if exp, ok := s.ExpiresAt(); ok {
				state := "valid"
				if time.Now().After(exp) {
					state = "expired, renewed on next call"
				}
				d.Printer.Print("token:   %s (%s)", exp.Local().Format(time.RFC1123), state)
			}
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&registerUsername, "username", "", "3 to 20 characters")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "6 to 50 characters")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
}
