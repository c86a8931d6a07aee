package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deusflow/transferradar/internal/app"
	"github.com/deusflow/transferradar/internal/entity"
)

func (c *cli) resolveCmd() *cobra.Command {
	var typeFlag string
	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Print the canonical name an alias resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := entity.ParseType(typeFlag)
			if err != nil {
				return err
			}

			svc, closeStore, err := app.Open(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			name, err := svc.Resolve(strings.Join(args, " "), typ)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "team", "entity type: team or player")
	return cmd
}
