package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nconnect-cli/internal/session"
)

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return writeErr(cmd, err)
			}
			var err error
			if username, err = promptIfEmpty(cmd, username, "Username: "); err != nil {
				return writeErr(cmd, err)
			}
			if password, err = promptIfEmpty(cmd, password, "Password: "); err != nil {
				return writeErr(cmd, err)
			}

			ctx := cmd.Context()
			gen, err := app.ctrl.Login(ctx, username, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, verr := app.client.UserStatus(ctx)
			if app.ctrl.FinishVerify(ctx, gen, st, verr) != session.VerifyOK {
				return writeErr(cmd, errors.New("signed in but status verification failed"))
			}

			role := "resident"
			if st.IsSuperuser {
				role = "admin"
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"username": st.Username,
					"role":     role,
				},
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var username, email, password, password2 string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not sign in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return writeErr(cmd, err)
			}
			var err error
			if username, err = promptIfEmpty(cmd, username, "Username: "); err != nil {
				return writeErr(cmd, err)
			}
			if email, err = promptIfEmpty(cmd, email, "Email: "); err != nil {
				return writeErr(cmd, err)
			}
			if password, err = promptIfEmpty(cmd, password, "Password: "); err != nil {
				return writeErr(cmd, err)
			}
			if password2 == "" {
				if password2, err = promptIfEmpty(cmd, password2, "Confirm password: "); err != nil {
					return writeErr(cmd, err)
				}
			}
			if password != password2 {
				return writeErr(cmd, errors.New("passwords do not match"))
			}

			if err := app.client.Register(cmd.Context(), username, email, password, password2); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"registered": username},
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&password2, "confirm-password", "", "Password confirmation")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			// Resume so the remote invalidation carries the stored token.
			// Logout clears local state even when no session exists.
			app.ctrl.Resume(ctx)
			app.ctrl.Logout(ctx)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"signedOut": true},
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the verified current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireActive(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			st := app.ctrl.User()
			role := "resident"
			if st.IsSuperuser {
				role = "admin"
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":       st.ID,
					"username": st.Username,
					"email":    st.Email,
					"role":     role,
				},
			})
		},
	}
}

func promptIfEmpty(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	r := bufio.NewReader(cmd.InOrStdin())
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("empty input")
	}
	return line, nil
}
