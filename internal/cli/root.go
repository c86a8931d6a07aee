// Package cli wires the transferradar commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deusflow/transferradar/internal/config"
	"github.com/deusflow/transferradar/internal/logger"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "0.1.0"

type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "transferradar",
		Short: "Transferradar - who is linked with whom in recent football news",
		Long: `Transferradar scans recent Google News results for a club or player and
ranks the players (for a club) or clubs (for a player) mentioned alongside it.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (TRANSFERRADAR_*)
3. Config file (./transferradar.yaml or --config)
4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(c.v, c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger.Init(cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: ./transferradar.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = c.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		c.serveCmd(),
		c.mentionsCmd(),
		c.resolveCmd(),
		c.configCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "transferradar v%s\n", Version)
		},
	}
}
