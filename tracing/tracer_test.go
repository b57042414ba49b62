package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/skrm/sim/hooking"
	"github.com/sarchlab/skrm/sim/naming"
	gomock "go.uber.org/mock/gomock"
)

type testDomain struct {
	naming.NamedBase
	hooking.HookableBase
}

func newTestDomain() *testDomain {
	return &testDomain{NamedBase: naming.MakeNamedBase("Domain")}
}

type timedTestDomain struct {
	testDomain
	time float64
}

func (d *timedTestDomain) Now() float64 {
	return d.time
}

var _ = Describe("Tracers", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		domain     *testDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		domain = newTestDomain()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should refuse to collect with the same tracer twice", func() {
		tracer := NewStepCountTracer(AllTasks)
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
		Expect(domain.NumHooks()).To(Equal(1))
	})

	It("should ignore hooks fired at other positions", func() {
		tracer := NewStepCountTracer(AllTasks)
		CollectTrace(domain, tracer)

		domain.InvokeHook(hooking.HookCtx{
			Domain: domain,
			Pos:    &hooking.HookPos{Name: "Other"},
			Item:   "anything",
		})

		Expect(tracer.StepNames()).To(BeEmpty())
	})

	Describe("StepCountTracer", func() {
		It("should count steps of accepted tasks", func() {
			tracer := NewStepCountTracer(KindIs("write"))
			CollectTrace(domain, tracer)

			StartTask("1", "", domain, "write", "pw", nil)
			AddTaskStep("1", domain, "shift")
			AddTaskStep("1", domain, "detect")
			AddTaskStep("1", domain, "shift")
			EndTask("1", domain)

			StartTask("2", "", domain, "write", "pw", nil)
			AddTaskStep("2", domain, "shift")
			EndTask("2", domain)

			StartTask("3", "", domain, "read", "pw", nil)
			AddTaskStep("3", domain, "detect")
			EndTask("3", domain)

			AddTaskStep("4", domain, "inject")

			Expect(tracer.StepNames()).To(Equal([]string{"shift", "detect"}))
			Expect(tracer.StepCount("shift")).To(Equal(uint64(3)))
			Expect(tracer.StepCount("detect")).To(Equal(uint64(1)))
			Expect(tracer.StepCount("inject")).To(BeZero())
			Expect(tracer.TaskCount("shift")).To(Equal(uint64(2)))
			Expect(tracer.TaskCount("detect")).To(Equal(uint64(1)))
		})
	})

	Describe("TotalTimeTracer", func() {
		It("should add up the time of finished tasks", func() {
			tracer := NewTotalTimeTracer(timeTeller, KindIs("write"))
			CollectTrace(domain, tracer)

			gomock.InOrder(
				timeTeller.EXPECT().Now().Return(1.0),
				timeTeller.EXPECT().Now().Return(4.0),
				timeTeller.EXPECT().Now().Return(4.0),
				timeTeller.EXPECT().Now().Return(9.0),
			)

			StartTask("1", "", domain, "write", "naive", nil)
			EndTask("1", domain)
			StartTask("2", "", domain, "write", "naive", nil)
			EndTask("2", domain)

			Expect(tracer.TotalTime()).To(Equal(8.0))
			Expect(tracer.AverageTime()).To(Equal(4.0))
			Expect(tracer.NumTasks()).To(Equal(uint64(2)))
		})

		It("should use the domain time without a time teller", func() {
			domain := &timedTestDomain{
				testDomain: testDomain{NamedBase: naming.MakeNamedBase("Timed")},
			}
			tracer := NewTotalTimeTracer(nil, AllTasks)
			CollectTrace(domain, tracer)

			domain.time = 2
			StartTask("1", "", domain, "write", "pw", nil)
			domain.time = 7.5
			EndTask("1", domain)

			Expect(tracer.TotalTime()).To(Equal(5.5))
		})

		It("should report zero before any task ends", func() {
			tracer := NewTotalTimeTracer(timeTeller, AllTasks)

			Expect(tracer.TotalTime()).To(BeZero())
			Expect(tracer.AverageTime()).To(BeZero())
		})
	})
})
