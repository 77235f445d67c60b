package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clinica/dashboard/internal/platform/auth"
	"github.com/clinica/dashboard/internal/platform/session"
)

func (a *app) openSession() (*session.BoltStore, error) {
	return session.OpenBolt(a.cfg.SessionFile)
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the session token used by the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _ := cmd.Flags().GetString("token")
			if token == "" {
				var err error
				if token, err = a.promptToken(); err != nil {
					return err
				}
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("no token given")
			}

			store, err := a.openSession()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SetToken(token); err != nil {
				return err
			}
			if claims, err := auth.InspectToken(token); err == nil {
				fmt.Fprintf(a.stdout, "Sesión iniciada como %s\n", displayName(claims))
				return nil
			}
			fmt.Fprintln(a.stdout, "Sesión iniciada")
			return nil
		},
	}
	cmd.Flags().String("token", "", "Session token (prompted when omitted)")
	return cmd
}

// promptToken reads the token without echo from a terminal, or as one line
// from a pipe.
func (a *app) promptToken() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read token: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		return "", fmt.Errorf("no token given")
	}
	return line, nil
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openSession()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Sesión cerrada")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored session token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openSession()
			if err != nil {
				return err
			}
			defer store.Close()
			claims, ok, err := session.Describe(store)
			if err != nil {
				return err
			}
			if !ok {
				a.redirect(a.cfg.LoginPath)
				return errReported
			}
			if claims == nil {
				fmt.Fprintln(a.stdout, "Sesión activa (token sin datos de usuario)")
				return nil
			}
			renderClaims(a.stdout, claims)
			return nil
		},
	}
}

func displayName(c *auth.Claims) string {
	if c.Name != "" {
		return c.Name
	}
	if c.Subject != "" {
		return c.Subject
	}
	return "(anónimo)"
}

func expiry(c *auth.Claims, now time.Time) string {
	if c.ExpiresAt == nil {
		return "sin vencimiento"
	}
	exp := c.ExpiresAt.Time
	if exp.Before(now) {
		return exp.Format(time.RFC3339) + " (vencido)"
	}
	return exp.Format(time.RFC3339)
}
