package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/seed"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

const (
	defaultGenerated  = 50
	defaultOrphanRate = 0.1
)

func newSeedCmd(g *globalFlags) *cobra.Command {
	cfg := &seed.Config{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixtures and verify the enriched performance listing",
		Long: `Registers (or reuses) the --email account, creates the fixture venues,
bands and setlists, posts the fixture and generated performances
concurrently, then lists them back and checks every joined field.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.email == "" {
				return fmt.Errorf("--email is required")
			}
			cfg.BaseURL, cfg.Email, cfg.Timeout = g.url, g.email, g.timeout
			if cfg.DisplayName == "" {
				cfg.DisplayName = g.email
			}
			stats, err := seed.Run(cmd.Context(), cfg, logger.Named("seed"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d performances (%d with dangling references), listed %d in %s\n",
				stats.Performances, stats.Orphans, stats.Listed, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.DisplayName, "name", "", "display name when registering (default: the email)")
	f.StringVar(&cfg.AccessCode, "access-code", "", "early-access code")
	f.StringVar(&cfg.FixturesFile, "fixtures", "", "YAML fixtures file (default: built-in set)")
	f.IntVar(&cfg.Performances, "performances", defaultGenerated, "generated performances on top of the fixtures")
	f.Float64Var(&cfg.OrphanRate, "orphan-rate", defaultOrphanRate, "share of generated references that point nowhere")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "concurrent create requests")
	f.Uint64Var(&cfg.Seed, "seed", 1, "generator seed")
	return cmd
}
