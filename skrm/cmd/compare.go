package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/sarchlab/skrm/racetrack"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare VALUE...",
		Short: "Write the same values with several strategies.",
		Long: "`compare 0.125 0.124` writes the values with every strategy, " +
			"each into its own fresh device, and prints the totals side " +
			"by side.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies, err := cmd.Flags().GetStringSlice("strategies")
			if err != nil {
				return err
			}

			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}

			s, err := newSession(cmd, strategies, args)
			if err != nil {
				return err
			}

			if err := s.run(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

			fmt.Fprintln(tw,
				"Strategy\tInject\tDetect\tRemove\tShift\tLatency\tEnergy")

			for _, run := range s.exp.Runs() {
				r := run.Summarize()
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f\t%g\n",
					run.Strategy(),
					r.Counts.Inject, r.Counts.Detect,
					r.Counts.Remove, r.Counts.Shift,
					r.TotalLatency(), r.TotalEnergy())
			}

			if err := tw.Flush(); err != nil {
				return err
			}

			if verbose {
				for _, run := range s.exp.Runs() {
					fmt.Fprintf(out, "\n%s\n", run.Strategy())

					if err := printRecords(out, run.Records()); err != nil {
						return err
					}
				}
			}

			s.wait(cmd)

			return nil
		},
	}

	compareCmd.Flags().StringSlice("strategies", racetrack.StrategyNames(),
		"Strategies to compare.")
	compareCmd.Flags().Bool("parallel", false,
		"Run the strategies concurrently.")
	compareCmd.Flags().BoolP("verbose", "v", false,
		"Also print the cost of every write.")

	return compareCmd
}
