package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/seed"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

const (
	defaultURL     = "http://localhost:9080"
	defaultTimeout = 10 * time.Second
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	url     string
	email   string
	token   string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operate a running artist portal",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if g.verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.url, "url", envOr("PORTAL_URL", defaultURL), "base URL of the portal API")
	root.PersistentFlags().StringVar(&g.email, "email", os.Getenv("PORTAL_EMAIL"), "account to sign in as")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("PORTAL_TOKEN"), "session token; overrides --email")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", defaultTimeout, "HTTP request timeout")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newSeedCmd(g), newPerformancesCmd(g), newVersionCmd())
	return root
}

// client returns an authenticated API client.
func (g *globalFlags) client(cmd *cobra.Command) (*seed.Client, error) {
	c := seed.NewClient(g.url, g.timeout)
	if g.token != "" {
		c.SetToken(g.token)
		return c, nil
	}
	if g.email == "" {
		return nil, fmt.Errorf("either --token or --email is required")
	}
	if err := c.SignIn(cmd.Context(), g.email); err != nil {
		return nil, fmt.Errorf("sign in as %s: %w", g.email, err)
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
