// Package cmd provides the command-line interface of skrm.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/skrm/racetrack"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

// envPrefix prefixes the environment variables that override flag defaults.
// Flag --num-words is read from SKRM_NUM_WORDS.
const envPrefix = "SKRM_"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skrm",
		Short: "skrm simulates writes into a skyrmion racetrack memory.",
		Long: `skrm simulates writes into a skyrmion racetrack memory ` +
			`(SKRM) and reports the inject, detect, remove and shift ` +
			`operations each write strategy needs, with their latency and ` +
			`energy. Flag defaults can be overridden with SKRM_* ` +
			`environment variables or a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loadDotEnv()
			return applyEnvDefaults(cmd.Flags())
		},
	}

	addDeviceFlags(rootCmd.PersistentFlags())
	addOutputFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newWriteCmd(), newCompareCmd(), newRenderCmd())

	return rootCmd
}

func addDeviceFlags(f *pflag.FlagSet) {
	f.Int("word-size", 32, "Number of bits in a data word.")
	f.Int("num-words", 1, "Number of words on each racetrack.")
	f.Int("num-overhead", 2, "Number of buffer blocks on each racetrack.")
	f.Int("num-racetrack", 1, "Number of racetracks.")
	f.Int("target", 0, "The word that the values are written into.")

	defaults := racetrack.DefaultCostModel()
	for _, k := range racetrack.OpKinds {
		f.Float64(k.String()+"-latency", defaults.Of(k).Latency,
			fmt.Sprintf("Latency of one %s operation.", k))
		f.Float64(k.String()+"-energy", defaults.Of(k).Energy,
			fmt.Sprintf("Energy of one %s operation.", k))
	}
}

func addOutputFlags(f *pflag.FlagSet) {
	f.String("record", "",
		"Record the writes, the traces and the execution info into "+
			"<record>.sqlite3.")
	f.String("trace", "", "Write one line per write into <trace>.csv.")
	f.Bool("monitor", false,
		"Serve the devices over HTTP and wait for Ctrl+C after the writes.")
	f.Int("monitor-port", 0, "Port of the monitoring server. 0 picks one.")
	f.Bool("open-browser", false, "Open the monitoring page in a browser.")
}

func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}
}

// applyEnvDefaults sets every flag that is not given on the command line from
// its environment variable, if there is one.
func applyEnvDefaults(flags *pflag.FlagSet) error {
	var err error

	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		name := envPrefix +
			strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		value, ok := os.LookupEnv(name)
		if !ok {
			return
		}

		if setErr := flags.Set(f.Name, value); setErr != nil {
			err = fmt.Errorf("invalid %s: %w", name, setErr)
		}
	})

	return err
}

// Execute runs the command line and exits. The exit handlers that flush the
// recorders run before the process ends.
func Execute() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
