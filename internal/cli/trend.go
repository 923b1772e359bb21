package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nhle/activity-sync/internal/trend"
)

// TrendOptions holds flags for the trend command.
type TrendOptions struct {
	*RootOptions
	Key    string
	Anchor float64
	Length int
}

// NewTrendCommand creates the trend command.
func NewTrendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print the placeholder series generated for a metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for i, v := range trend.Generate(opts.Key, opts.Anchor, opts.Length) {
				fmt.Fprintf(w, "%2d  %s\n", i, strconv.FormatFloat(v, 'f', -1, 64))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Key, "key", "k", "", "metric key used as the seed")
	cmd.Flags().Float64VarP(&opts.Anchor, "anchor", "a", 0, "starting value")
	cmd.Flags().IntVarP(&opts.Length, "length", "n", trend.DefaultLength, "number of points (minimum 2)")

	return cmd
}
