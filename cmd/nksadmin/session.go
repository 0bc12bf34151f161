package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/naveenspark/nksadmin/internal/tui"
	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
	"github.com/naveenspark/nksadmin/pkg/session"
)

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

func loginCmd(g *globalFlags) *cobra.Command {
	var phone string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer closeEnv(cmd, e)

			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())
			if phone == "" {
				fmt.Fprint(out, "Phone: ")
				if phone, err = readLine(in); err != nil {
					return err
				}
			}
			fmt.Fprint(out, "Password: ")
			password, err := readPassword(cmd, in)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			if strings.TrimSpace(phone) == "" || password == "" {
				return errors.New("phone and password are required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			profile, err := e.client.Login(ctx, strings.TrimSpace(phone), password)
			if err != nil {
				return loginFailure(err)
			}
			fmt.Fprintf(out, "Logged in as %s.\n", profile.DisplayName())
			if e.cfg.Token != "" {
				fmt.Fprintln(out, labelStyle.Render("NKS_TOKEN is set, so this session lasts for this process only."))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "account phone number")
	return cmd
}

// loginFailure turns a login error into the message shown to the user.
func loginFailure(err error) error {
	var he *client.HTTPError
	switch {
	case errors.As(err, &he):
		return errors.New(he.Message)
	case errors.Is(err, client.ErrNetwork):
		return errors.New("network error, please try again")
	default:
		return err
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo when stdin is a terminal and falls back to
// a plain line otherwise.
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return readLine(in)
}

func logoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer closeEnv(cmd, e)

			if !e.store.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
				return nil
			}
			e.client.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer closeEnv(cmd, e)

			out := cmd.OutOrStdout()
			token, ok := e.store.Token()
			if !ok {
				printGreeting(out)
				return nil
			}
			user, _ := e.store.User()
			printIdentity(out, user, token, time.Now())
			return nil
		},
	}
}

// printIdentity prints the stored profile and what the token says about
// its own expiry. The token is not verified.
func printIdentity(w io.Writer, user *domain.Profile, token string, now time.Time) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(user.DisplayName()))
	if user != nil {
		if user.Phone != "" {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render("phone:"), user.Phone)
		}
		if user.Role != "" {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render("role: "), tui.RoleBadge(user.Role))
		}
	}

	label := labelStyle.Render("token:")
	claims, err := session.DecodeClaims(token)
	switch {
	case err != nil:
		fmt.Fprintf(w, "%s opaque\n", label)
	case claims.ExpiresAt.IsZero():
		fmt.Fprintf(w, "%s no expiry\n", label)
	case claims.Expired(now):
		fmt.Fprintf(w, "%s expired %s\n", label, claims.ExpiresAt.Local().Format(time.RFC1123))
	default:
		fmt.Fprintf(w, "%s expires %s\n", label, claims.ExpiresAt.Local().Format(time.RFC1123))
	}
}
