package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLibraryCmd(opts *rootOptions) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "library [query]",
		Short: "List or search the archive catalog",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}

			items := lib.Search(strings.Join(args, " "), typ)
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No artifacts match.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tSTATUS")
			for _, a := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Type, a.Title, a.Status)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only show this type (Manuscript, Cartography, Oddities, Ephemera)")
	return cmd
}
