package experiment_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/skrm/datarecording"
	"github.com/sarchlab/skrm/experiment"
	"github.com/sarchlab/skrm/monitoring"
	"github.com/sarchlab/skrm/racetrack"
	"github.com/sarchlab/skrm/tracing"
)

func deltas(records []experiment.Record) []racetrack.Counts {
	out := make([]racetrack.Counts, 0, len(records))
	for _, r := range records {
		out = append(out, racetrack.Counts{
			Inject: r.Inject,
			Detect: r.Detect,
			Remove: r.Remove,
			Shift:  r.Shift,
		})
	}

	return out
}

var _ = Describe("Experiment", func() {
	var builder experiment.Builder

	BeforeEach(func() {
		builder = experiment.MakeBuilder().
			WithGeometry(racetrack.Geometry{
				WordSize:     32,
				NumWords:     3,
				NumOverhead:  2,
				NumRacetrack: 1,
			}).
			WithStrategies(
				racetrack.NaiveName,
				racetrack.PermutationName,
				racetrack.PermutationPlusName,
			).
			WithValues(0.125, 0.124, 0.125)
	})

	expected := map[string][]racetrack.Counts{
		racetrack.NaiveName: {
			{Inject: 5, Detect: 0, Remove: 32, Shift: 64},
			{Inject: 23, Detect: 0, Remove: 32, Shift: 64},
			{Inject: 5, Detect: 0, Remove: 32, Shift: 64},
		},
		racetrack.PermutationName: {
			{Inject: 5, Detect: 32, Remove: 0, Shift: 66},
			{Inject: 18, Detect: 32, Remove: 0, Shift: 66},
			{Inject: 0, Detect: 32, Remove: 18, Shift: 84},
		},
		racetrack.PermutationPlusName: {
			{Inject: 5, Detect: 33, Remove: 1, Shift: 65},
			{Inject: 5, Detect: 33, Remove: 1, Shift: 68},
			{Inject: 0, Detect: 12, Remove: 34, Shift: 47},
		},
	}

	runMustMatch := func(e *experiment.Experiment) {
		Expect(e.Runs()).To(HaveLen(3))

		for _, r := range e.Runs() {
			records := r.Records()

			Expect(deltas(records)).To(Equal(expected[r.Strategy()]),
				r.Strategy())
			Expect(records[2].Pattern).To(Equal(records[0].Pattern))
			Expect(records[1].Seq).To(Equal(1))

			s := r.Summary()
			Expect(s.NumWrites).To(Equal(3))
			Expect(racetrack.Counts{
				Inject: s.Inject,
				Detect: s.Detect,
				Remove: s.Remove,
				Shift:  s.Shift,
			}).To(Equal(r.Device().Counts()))
			Expect(s.Latency).To(BeNumerically("~",
				r.Summarize().TotalLatency(), 1e-9))
		}
	}

	It("should write every value with every strategy", func() {
		e, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(e.Run()).To(Succeed())
		runMustMatch(e)
	})

	It("should give the same results when runs are parallel", func() {
		e, err := builder.WithParallelRuns().Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(e.Run()).To(Succeed())
		runMustMatch(e)
	})

	It("should record the writes and summaries", func() {
		path := filepath.Join(GinkgoT().TempDir(), "exp")
		recorder := datarecording.New(path)
		defer recorder.Close()

		e, err := builder.WithRecorder(recorder).Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Run()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		n, err := reader.CountRows(experiment.WriteTable)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(9))

		n, err = reader.CountRows(experiment.SummaryTable)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
	})

	It("should register the devices to the monitor", func() {
		monitor := monitoring.NewMonitor()

		e, err := builder.WithMonitor(monitor).Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Run()).To(Succeed())

		Expect(func() {
			monitor.RegisterDevice(e.Runs()[0])
		}).To(Panic())
	})

	It("should trace every write of every device", func() {
		tracer := tracing.NewStepCountTracer(tracing.AllTasks)

		e, err := builder.WithParallelRuns().WithTracer(tracer).Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Run()).To(Succeed())

		var total racetrack.Counts
		for _, r := range e.Runs() {
			c := r.Device().Counts()
			total.Inject += c.Inject
			total.Detect += c.Detect
			total.Remove += c.Remove
			total.Shift += c.Shift
		}

		Expect(tracer.StepCount("inject")).To(Equal(total.Inject))
		Expect(tracer.StepCount("shift")).To(Equal(total.Shift))
		Expect(tracer.TaskCount("shift")).To(Equal(uint64(9)))
	})

	It("should reject bad parameters before running", func() {
		_, err := builder.WithTargetWord(3).Build()
		Expect(racetrack.IsArgumentError(err)).To(BeTrue())

		_, err = builder.WithStrategies("naive", "naive").Build()
		Expect(racetrack.IsArgumentError(err)).To(BeTrue())

		_, err = builder.WithStrategies("fast").Build()
		Expect(racetrack.IsArgumentError(err)).To(BeTrue())

		_, err = builder.WithStrategies().Build()
		Expect(racetrack.IsArgumentError(err)).To(BeTrue())
	})

	It("should give every experiment its own ID", func() {
		a, _ := builder.Build()
		b, _ := builder.Build()

		Expect(a.ID()).NotTo(Equal(b.ID()))
	})
})
