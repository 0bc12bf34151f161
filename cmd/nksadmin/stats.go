package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/naveenspark/nksadmin/pkg/client"
	"github.com/naveenspark/nksadmin/pkg/domain"
)

var errNotLoggedIn = errors.New("not logged in, run: nksadmin login")

func statsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(g)
			if err != nil {
				return err
			}
			defer closeEnv(cmd, e)

			if !e.store.IsAuthenticated() {
				return errNotLoggedIn
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			stats, err := e.client.DashboardStats(ctx)
			switch {
			case errors.Is(err, client.ErrSessionExpired):
				return errors.New("session expired, run: nksadmin login")
			case err != nil:
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func printStats(w io.Writer, s *domain.DashboardStats) {
	rows := []struct {
		label string
		value int
	}{
		{"Total orders", s.TotalOrders},
		{"Orders this week", s.OrdersThisWeek},
		{"Orders this month", s.OrdersThisMonth},
		{"Products", s.TotalProducts},
		{"Categories", s.TotalCategories},
		{"Users", s.TotalUsers},
	}
	value := lipgloss.NewStyle().Bold(true)
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", r.label)), value.Render(fmt.Sprint(r.value)))
	}
}
