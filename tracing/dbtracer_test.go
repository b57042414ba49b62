package tracing

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/skrm/datarecording"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		recorder   datarecording.DataRecorder
		reader     *datarecording.SQLiteReader
		domain     *testDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		timeTeller.EXPECT().Now().Return(2.5).AnyTimes()
		domain = newTestDomain()

		path := filepath.Join(GinkgoT().TempDir(), "trace")
		recorder = datarecording.New(path)

		var err error
		reader, err = datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		reader.Close()
		recorder.Close()
		mockCtrl.Finish()
	})

	It("should write finished tasks and their steps", func() {
		tracer := NewDBTracer(timeTeller, recorder, true)
		CollectTrace(domain, tracer)

		StartTask("1", "", domain, "write", "pw", struct{ Value float32 }{0.125})
		AddTaskStep("1", domain, "shift")
		AddTaskStep("1", domain, "detect")
		EndTask("1", domain)

		StartTask("2", "", domain, "write", "pw", nil)
		tracer.Terminate()

		Expect(recorder.ListTables()).To(Equal([]string{TaskTable, StepTable}))

		n, err := reader.CountRows(TaskTable)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		n, err = reader.CountRows(StepTable)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})

	It("should skip the step table when asked to", func() {
		tracer := NewDBTracer(timeTeller, recorder, false)
		CollectTrace(domain, tracer)

		StartTask("1", "", domain, "write", "naive", nil)
		AddTaskStep("1", domain, "inject")
		EndTask("1", domain)
		tracer.Terminate()

		Expect(recorder.ListTables()).To(Equal([]string{TaskTable}))

		n, err := reader.CountRows(TaskTable)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})

	It("should panic on tasks without a location", func() {
		tracer := NewDBTracer(timeTeller, recorder, false)

		Expect(func() {
			tracer.StartTask(Task{ID: "1", Kind: "write", What: "pw"})
		}).To(Panic())
	})
})
