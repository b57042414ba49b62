package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/skrm/experiment"
	"github.com/sarchlab/skrm/racetrack"
	"github.com/spf13/cobra"
)

func newWriteCmd() *cobra.Command {
	writeCmd := &cobra.Command{
		Use:   "write VALUE...",
		Short: "Write values into one word and report the cost.",
		Long: "`write 0.125 0.124` writes the values, in order, into the " +
			"target word of a fresh device and prints the cost of every " +
			"write followed by the totals.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := cmd.Flags().GetString("strategy")
			if err != nil {
				return err
			}

			showStorage, err := cmd.Flags().GetBool("show-storage")
			if err != nil {
				return err
			}

			s, err := newSession(cmd, []string{strategy}, args)
			if err != nil {
				return err
			}

			if err := s.run(); err != nil {
				return err
			}

			run := s.exp.Runs()[0]
			out := cmd.OutOrStdout()

			if err := printRecords(out, run.Records()); err != nil {
				return err
			}

			if showStorage {
				fmt.Fprintf(out, "\n%s", run.Render())
			}

			fmt.Fprintln(out)
			if err := run.Summarize().Format(out); err != nil {
				return err
			}

			s.wait(cmd)

			return nil
		},
	}

	writeCmd.Flags().String("strategy", racetrack.NaiveName,
		"Write strategy: naive, pw or pw_plus.")
	writeCmd.Flags().Bool("show-storage", false,
		"Draw the storage after the last write.")

	return writeCmd
}

func printRecords(w io.Writer, records []experiment.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw,
		"Seq\tValue\tPattern\tInject\tDetect\tRemove\tShift\tLatency\tEnergy")

	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%g\t%s\t%d\t%d\t%d\t%d\t%.1f\t%g\n",
			r.Seq, float32(r.Value), r.Pattern,
			r.Inject, r.Detect, r.Remove, r.Shift, r.Latency, r.Energy)
	}

	return tw.Flush()
}
