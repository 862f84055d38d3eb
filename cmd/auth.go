// ABOUTME: Sign-in commands: login, logout, whoami, refresh
// ABOUTME: Credentials come from flags, TCGB_PASSWORD, or an interactive form

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/markalston/tcg-binder/internal/identity"
	"github.com/markalston/tcg-binder/internal/tui/login"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in to the identity provider. The session is stored in the config
directory and reused by other commands until you log out.

Without --email or TCGB_PASSWORD an interactive form is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int {
			creds := login.Credentials{Email: loginEmail, Password: os.Getenv("TCGB_PASSWORD")}
			if (creds.Email == "" || creds.Password == "") && term.IsTerminal(int(os.Stdin.Fd())) {
				prompted, err := login.Prompt(creds.Email)
				if err != nil {
					fmt.Fprintf(os.Stdout, "Error: %v\n", err)
					return 2
				}
				creds = prompted
			}
			return runLogin(ctx, os.Stdout, creds)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runLogout(ctx, os.Stdout) })
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the signed-in user.

Exit codes:
  0 - Signed in
  1 - Not signed in
  2 - Error`,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runWhoami(ctx, os.Stdout) })
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the stored ID token",
	Long: `Exchange the stored refresh token for a new ID token.

Exit codes:
  0 - Token renewed
  1 - Not signed in or the identity service refused
  2 - Error`,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runRefresh(ctx, os.Stdout) })
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, refreshCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
}

// exitWith runs fn with a signal-aware context and exits non-zero on failure
func exitWith(fn func(ctx context.Context) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := fn(ctx)
	cancel()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func runLogin(ctx context.Context, w io.Writer, creds login.Credentials) int {
	if err := creds.Validate(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	u, err := a.provider.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]interface{}{"uid": u.UID, "email": u.Email, "expires_at": u.ExpiresAt})
	} else {
		fmt.Fprintf(w, "Signed in as %s\n", u.Email)
	}
	return 0
}

func runLogout(ctx context.Context, w io.Writer) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	if err := a.session.WaitReady(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := a.provider.SignOut(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !IsJSONOutput() {
		fmt.Fprintln(w, "Signed out")
	} else {
		writeJSON(w, map[string]bool{"signed_in": false})
	}
	return 0
}

func runWhoami(ctx context.Context, w io.Writer) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	if err := a.session.WaitReady(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	u := a.session.Current()
	if IsJSONOutput() {
		out := map[string]interface{}{"signed_in": u != nil}
		if u != nil {
			out["uid"] = u.UID
			out["email"] = u.Email
			out["expires_at"] = u.ExpiresAt
		}
		writeJSON(w, out)
	} else if u == nil {
		fmt.Fprintln(w, "Not signed in")
	} else {
		fmt.Fprintf(w, "Email:   %s\nUID:     %s\nExpires: %s\n", u.Email, u.UID, u.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}

	if u == nil {
		return 1
	}
	return 0
}

func runRefresh(ctx context.Context, w io.Writer) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	u, err := a.provider.Refresh(ctx)
	var authErr *identity.AuthError
	switch {
	case errors.Is(err, identity.ErrNotSignedIn):
		fmt.Fprintln(w, "Not signed in")
		return 1
	case errors.As(err, &authErr):
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	case err != nil:
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]interface{}{"uid": u.UID, "email": u.Email, "expires_at": u.ExpiresAt})
	} else {
		fmt.Fprintf(w, "Token renewed for %s, expires %s\n", u.Email, u.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return 0
}
