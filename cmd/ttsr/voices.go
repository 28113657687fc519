package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List available voices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			registry, err := loadRegistry(cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tGENDER\tSTYLE")
			for _, v := range registry.List() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Gender, v.Style)
			}

			return tw.Flush()
		},
	}
}
