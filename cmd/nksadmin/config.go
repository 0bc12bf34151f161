package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/naveenspark/nksadmin/internal/config"
)

func configCmd(g *globalFlags) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved settings",
		Long: `Show the settings after defaults, config.yaml, NKS_* variables and flags
are applied. With --save they are written to config.yaml in the state
directory. NKS_TOKEN is never written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.stateDir)
			if err != nil {
				return err
			}
			g.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprintf(out, "%s %s\n%s", labelStyle.Render("# state dir:"), cfg.StateDir, data)
			if !save {
				return nil
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved to %s.\n", cfg.ConfigPath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the settings to config.yaml")
	return cmd
}
