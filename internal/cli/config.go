package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect transferradar configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if used := c.v.ConfigFileUsed(); used != "" {
				cmd.PrintErrf("Configuration file: %s\n\n", used)
			} else {
				cmd.PrintErrln("No configuration file found (defaults and environment only)")
				cmd.PrintErrln()
			}

			out, err := yaml.Marshal(c.cfg)
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	})
	return cmd
}
