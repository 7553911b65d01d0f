package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kroma-labs/grest/grest"
)

func newEndpointsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List configured endpoints with their accessor keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Release()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKEY\tURL")
			for _, name := range client.Endpoints() {
				e := client.MustEndpoint(grest.AccessorKey(name))
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name(), e.Key(), e.URL())
			}
			return w.Flush()
		},
	}
}
