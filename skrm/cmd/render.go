package cmd

import (
	"fmt"

	"github.com/sarchlab/skrm/racetrack"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render [VALUE...]",
		Short: "Draw the storage of a device.",
		Long: "`render 0.125` writes the values into a fresh device and " +
			"draws its storage, one racetrack per line, with the access " +
			"ports between bars. Without values, the empty layout is drawn.",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := cmd.Flags().GetString("strategy")
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

			fmt.Fprint(cmd.OutOrStdout(), s.exp.Runs()[0].Render())

			s.wait(cmd)

			return nil
		},
	}

	renderCmd.Flags().String("strategy", racetrack.NaiveName,
		"Write strategy: naive, pw or pw_plus.")

	return renderCmd
}
