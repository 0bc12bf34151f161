package main

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var greetings = [...]string{
	"The counter is open. The till is not.",
	"Orders do not ship themselves. Sign in.",
	"Somebody bought forty LED bulbs. Somebody should look.",
	"The stock room is quiet. Too quiet.",
	"Every category you skip is a shelf nobody finds.",
	"An electrician is waiting on a delivery status.",
	"The dashboard has numbers for you. Some of them are good.",
	"Copper wire is out of stock again. Probably.",
}

const accent = "#4ade80"

// printGreeting is shown by commands that need a session when there is none.
func printGreeting(w io.Writer) {
	banner := figure.NewFigure("nksadmin", "cybermedium", true).String()
	title := lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true).Render(strings.TrimRight(banner, "\n"))

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(greetings[rand.Intn(len(greetings))])

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To sign in: nksadmin login")

	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}

// printHelp lists the commands under the banner.
func printHelp(w io.Writer, root *cobra.Command) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(accent)).
		Bold(true).
		Render("N K S   A D M I N")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, descStyle.Render(root.Short))
	fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", root.Name())), descStyle.Render("Open the console (interactive TUI)"))
	for _, c := range root.Commands() {
		if !c.IsAvailableCommand() {
			continue
		}
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", root.Name()+" "+c.Name())), descStyle.Render(c.Short))
	}
	fmt.Fprintf(w, "\n  Flags:\n%s\n", root.PersistentFlags().FlagUsages())
}
