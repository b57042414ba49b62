package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/pkg/browser"
	"github.com/sarchlab/skrm/datarecording"
	"github.com/sarchlab/skrm/experiment"
	"github.com/sarchlab/skrm/monitoring"
	"github.com/sarchlab/skrm/racetrack"
	"github.com/sarchlab/skrm/tracing"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type options struct {
	geometry    racetrack.Geometry
	target      int
	cost        racetrack.CostModel
	record      string
	trace       string
	monitor     bool
	monitorPort int
	openBrowser bool
	parallel    bool
}

func readOptions(f *pflag.FlagSet) (options, error) {
	var (
		o    options
		errs []error
	)

	getInt := func(name string) int {
		v, err := f.GetInt(name)
		errs = append(errs, err)
		return v
	}
	getFloat := func(name string) float64 {
		v, err := f.GetFloat64(name)
		errs = append(errs, err)
		return v
	}
	getString := func(name string) string {
		v, err := f.GetString(name)
		errs = append(errs, err)
		return v
	}
	getBool := func(name string) bool {
		v, err := f.GetBool(name)
		errs = append(errs, err)
		return v
	}

	o.geometry = racetrack.Geometry{
		WordSize:     getInt("word-size"),
		NumWords:     getInt("num-words"),
		NumOverhead:  getInt("num-overhead"),
		NumRacetrack: getInt("num-racetrack"),
	}
	o.target = getInt("target")

	for _, k := range racetrack.OpKinds {
		o.cost.Set(k, racetrack.OpCost{
			Latency: getFloat(k.String() + "-latency"),
			Energy:  getFloat(k.String() + "-energy"),
		})
	}

	o.record = getString("record")
	o.trace = getString("trace")
	o.monitor = getBool("monitor")
	o.monitorPort = getInt("monitor-port")
	o.openBrowser = getBool("open-browser")

	if f.Lookup("parallel") != nil {
		o.parallel = getBool("parallel")
	}

	for _, err := range errs {
		if err != nil {
			return o, err
		}
	}

	return o, nil
}

func parseValues(args []string) ([]float32, error) {
	values := make([]float32, 0, len(args))

	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}

		values = append(values, float32(v))
	}

	return values, nil
}

// session wires an experiment to the recorder, tracers and monitor that the
// flags ask for.
type session struct {
	opts     options
	recorder datarecording.DataRecorder
	exec     *datarecording.ExecRecorder
	dbTracer *tracing.DBTracer
	csv      *tracing.CSVTracer
	monitor  *monitoring.Monitor
	exp      *experiment.Experiment
}

func newSession(
	cmd *cobra.Command,
	strategies []string,
	args []string,
) (*session, error) {
	opts, err := readOptions(cmd.Flags())
	if err != nil {
		return nil, err
	}

	values, err := parseValues(args)
	if err != nil {
		return nil, err
	}

	s := &session{opts: opts}

	b := experiment.MakeBuilder().
		WithGeometry(opts.geometry).
		WithStrategies(strategies...).
		WithValues(values...).
		WithTargetWord(opts.target).
		WithCostModel(opts.cost)

	if opts.parallel {
		b = b.WithParallelRuns()
	}

	if opts.record != "" {
		b, err = s.setupRecorder(b, cmd)
		if err != nil {
			return nil, err
		}
	}

	if opts.trace != "" {
		s.csv, err = tracing.CreateCSVTracer(nil, opts.trace)
		if err != nil {
			return nil, err
		}

		b = b.WithTracer(s.csv)
	}

	if opts.monitor {
		s.monitor = monitoring.NewMonitor()
		if opts.monitorPort != 0 {
			s.monitor.WithPortNumber(opts.monitorPort)
		}

		b = b.WithMonitor(s.monitor)
	}

	s.exp, err = b.Build()
	if err != nil {
		return nil, err
	}

	if opts.monitor {
		if err := s.startMonitor(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *session) setupRecorder(
	b experiment.Builder,
	cmd *cobra.Command,
) (experiment.Builder, error) {
	filename := s.opts.record + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return b, fmt.Errorf("file %s already exists", filename)
	}

	s.recorder = datarecording.New(s.opts.record)

	s.exec = datarecording.NewExecRecorder(s.recorder)
	s.exec.Start()
	s.exec.AddProperty("Subcommand", cmd.Name())
	s.exec.AddProperty("Word Size", strconv.Itoa(s.opts.geometry.WordSize))
	s.exec.AddProperty("Num Words", strconv.Itoa(s.opts.geometry.NumWords))
	s.exec.AddProperty("Num Overhead",
		strconv.Itoa(s.opts.geometry.NumOverhead))
	s.exec.AddProperty("Num Racetrack",
		strconv.Itoa(s.opts.geometry.NumRacetrack))
	s.exec.AddProperty("Target Word", strconv.Itoa(s.opts.target))

	s.dbTracer = tracing.NewDBTracer(nil, s.recorder, true)

	return b.WithRecorder(s.recorder).WithTracer(s.dbTracer), nil
}

func (s *session) startMonitor() error {
	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	if s.opts.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
		}
	}

	return nil
}

// run executes the experiment and flushes what was recorded.
func (s *session) run() error {
	err := s.exp.Run()

	if s.dbTracer != nil {
		s.dbTracer.Terminate()
	}

	if s.exec != nil {
		s.exec.AddProperty("Experiment", s.exp.ID())
		s.exec.End()
	}

	if s.csv != nil {
		s.csv.Flush()
	}

	return err
}

// wait blocks until the command is interrupted, if the devices are being
// monitored.
func (s *session) wait(cmd *cobra.Command) {
	if s.monitor == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Writes done. Press Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	<-ctx.Done()
}
