package racetrack

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/skrm/ieee754"
	"github.com/sarchlab/skrm/tracing"
	gomock "go.uber.org/mock/gomock"
)

type writeStep struct {
	value  float32
	counts Counts
}

func portsMustBeEmpty(m *SKRM) {
	l := m.Layout()
	for ap := 0; ap < l.NumAPs(); ap++ {
		ExpectWithOffset(1, m.Storage().Bit(l.APOffset(ap))).
			To(BeZero(), "access port %d", ap)
	}
}

var _ = Describe("Write strategies", func() {
	values := []float32{0.125, 0.124, 0.125}

	DescribeTable("should issue the expected operations",
		func(name string, flipped bool, steps []writeStep) {
			m, err := MakeBuilder().
				WithWordSize(32).
				WithNumWords(3).
				WithStrategyName(name).
				Build("SKRM")
			Expect(err).NotTo(HaveOccurred())

			for i, step := range steps {
				Expect(m.Write(step.value, 0)).To(Succeed())
				Expect(m.Counts()).To(Equal(step.counts), "write %d", i)

				expected := ieee754.Encode(step.value)
				if flipped {
					expected = ieee754.EncodeFlipped(step.value)
				}

				w, err := m.RenderWord(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(w).To(Equal(expected), "write %d", i)
				portsMustBeEmpty(m)
			}
		},
		Entry("naive", NaiveName, false, []writeStep{
			{values[0], Counts{Inject: 5, Detect: 0, Remove: 32, Shift: 64}},
			{values[1], Counts{Inject: 28, Detect: 0, Remove: 64, Shift: 128}},
			{values[2], Counts{Inject: 33, Detect: 0, Remove: 96, Shift: 192}},
		}),
		Entry("pw", PermutationName, false, []writeStep{
			{values[0], Counts{Inject: 5, Detect: 32, Remove: 0, Shift: 66}},
			{values[1], Counts{Inject: 23, Detect: 64, Remove: 0, Shift: 132}},
			{values[2], Counts{Inject: 23, Detect: 96, Remove: 18, Shift: 216}},
		}),
		Entry("pw_plus", PermutationPlusName, true, []writeStep{
			{values[0], Counts{Inject: 5, Detect: 33, Remove: 1, Shift: 65}},
			{values[1], Counts{Inject: 10, Detect: 66, Remove: 2, Shift: 133}},
			{values[2], Counts{Inject: 10, Detect: 78, Remove: 36, Shift: 180}},
		}),
	)

	DescribeTable("should leave other words alone",
		func(name string) {
			m, err := MakeBuilder().
				WithWordSize(32).
				WithNumWords(3).
				WithStrategyName(name).
				Build("SKRM")
			Expect(err).NotTo(HaveOccurred())

			Expect(m.Write(-2.5, 0)).To(Succeed())
			Expect(m.Write(7.75, 2)).To(Succeed())
			Expect(m.Write(0.124, 1)).To(Succeed())

			w0, _ := m.RenderWord(0)
			w1, _ := m.RenderWord(1)
			w2, _ := m.RenderWord(2)

			encode := ieee754.Encode
			if name == PermutationPlusName {
				encode = ieee754.EncodeFlipped
			}

			Expect(w0).To(Equal(encode(-2.5)))
			Expect(w1).To(Equal(encode(0.124)))
			Expect(w2).To(Equal(encode(7.75)))
			portsMustBeEmpty(m)
		},
		Entry("naive", NaiveName),
		Entry("pw", PermutationName),
		Entry("pw_plus", PermutationPlusName),
	)

	DescribeTable("should reject targets outside the word range",
		func(name string, target int) {
			m, err := MakeBuilder().
				WithWordSize(32).
				WithNumWords(3).
				WithStrategyName(name).
				Build("SKRM")
			Expect(err).NotTo(HaveOccurred())

			before := m.Render()
			err = m.Write(1.0, target)

			Expect(IsArgumentError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("target word"))
			Expect(m.Render()).To(Equal(before))
			Expect(m.Counts()).To(Equal(Counts{}))
		},
		Entry("naive below", NaiveName, -1),
		Entry("naive above", NaiveName, 3),
		Entry("pw below", PermutationName, -1),
		Entry("pw above", PermutationName, 3),
		Entry("pw_plus below", PermutationPlusName, -1),
		Entry("pw_plus above", PermutationPlusName, 3),
	)

	Context("with a mocked encoder", func() {
		var (
			mockCtrl *gomock.Controller
			encoder  *MockEncoder
			builder  Builder
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			encoder = NewMockEncoder(mockCtrl)
			builder = MakeBuilder().
				WithWordSize(32).
				WithNumWords(1).
				WithEncoder(encoder)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should never inject for an all-zero naive write", func() {
			encoder.EXPECT().Encode(float32(0)).Return(zeros(32))
			m, _ := builder.Build("SKRM")

			Expect(m.Write(0, 0)).To(Succeed())
			Expect(m.Counts()).To(Equal(Counts{Remove: 32, Shift: 64}))
			Expect(m.Storage().PopCount()).To(BeZero())
		})

		It("should never inject for an all-zero pw write", func() {
			encoder.EXPECT().Encode(float32(0)).Return(zeros(32))
			m, _ := builder.WithStrategyName(PermutationName).Build("SKRM")

			Expect(m.Write(0, 0)).To(Succeed())
			Expect(m.Counts()).To(Equal(Counts{Detect: 32, Shift: 66}))
		})

		It("should retire the carriers pw does not need", func() {
			ones := strings.Repeat("1", 32)
			encoder.EXPECT().Encode(float32(1)).Return(ones)
			encoder.EXPECT().Encode(float32(2)).Return(zeros(32))
			m, _ := builder.WithStrategyName(PermutationName).Build("SKRM")

			Expect(m.Write(1, 0)).To(Succeed())
			Expect(m.Counts()).To(Equal(
				Counts{Inject: 32, Detect: 32, Shift: 66}))

			Expect(m.Write(2, 0)).To(Succeed())
			Expect(m.Counts()).To(Equal(
				Counts{Inject: 32, Detect: 64, Remove: 32, Shift: 164}))
			Expect(m.Storage().PopCount()).To(BeZero())
		})

		It("should reuse every carrier when pw rewrites the same pattern", func() {
			pattern := "1010" + zeros(28)
			encoder.EXPECT().Encode(float32(3)).Return(pattern).Times(2)
			m, _ := builder.WithStrategyName(PermutationName).Build("SKRM")

			Expect(m.Write(3, 0)).To(Succeed())
			Expect(m.Write(3, 0)).To(Succeed())

			Expect(m.Counts().Inject).To(Equal(uint64(2)))
			Expect(m.Counts().Remove).To(BeZero())
			w, _ := m.RenderWord(0)
			Expect(w).To(Equal(pattern))
		})

		It("should skip the leading zeros when pw_plus has all carriers", func() {
			pattern := zeros(30) + "11" + "0"
			encoder.EXPECT().EncodeFlipped(float32(4)).Return(pattern).Times(2)
			m, _ := builder.WithStrategyName(PermutationPlusName).Build("SKRM")

			Expect(m.Write(4, 0)).To(Succeed())
			first := m.Counts()

			Expect(m.Write(4, 0)).To(Succeed())
			delta := m.Counts().Sub(first)

			Expect(delta.Inject).To(BeZero())
			Expect(delta.Shift).To(BeNumerically("<", first.Shift))
			w, _ := m.RenderWord(0)
			Expect(w).To(Equal(pattern))
			portsMustBeEmpty(m)
		})

		It("should never inject for an all-zero pw_plus write", func() {
			pattern := "0" + strings.Repeat("1", 8) + zeros(24)
			encoder.EXPECT().EncodeFlipped(float32(7)).Return(pattern)
			encoder.EXPECT().EncodeFlipped(float32(0)).Return(zeros(33))
			m, _ := builder.WithStrategyName(PermutationPlusName).Build("SKRM")

			Expect(m.Write(7, 0)).To(Succeed())
			first := m.Counts()

			Expect(m.Write(0, 0)).To(Succeed())

			Expect(m.Counts().Sub(first)).To(Equal(
				Counts{Detect: 33, Remove: 1, Shift: 35}))
			w, _ := m.RenderWord(0)
			Expect(w).To(Equal(zeros(33)))
			portsMustBeEmpty(m)
		})

		It("should reject patterns that do not fill a word", func() {
			encoder.EXPECT().Encode(float32(5)).Return(zeros(31))
			m, _ := builder.Build("SKRM")

			err := m.Write(5, 0)

			Expect(IsArgumentError(err)).To(BeTrue())
			Expect(m.Counts()).To(Equal(Counts{}))
		})

		It("should reject patterns that are not binary", func() {
			encoder.EXPECT().Encode(float32(6)).Return("2" + zeros(31))
			m, _ := builder.WithStrategyName(PermutationName).Build("SKRM")

			Expect(IsArgumentError(m.Write(6, 0))).To(BeTrue())
			Expect(m.Counts()).To(Equal(Counts{}))
		})
	})

	It("should keep counts when the strategy changes", func() {
		m, _ := MakeBuilder().WithNumWords(2).Build("SKRM")

		Expect(m.Write(0.125, 1)).To(Succeed())
		before := m.Counts()

		m.SetStrategy(Permutation{})
		Expect(m.Strategy().Name()).To(Equal(PermutationName))
		Expect(m.Counts()).To(Equal(before))

		Expect(m.Write(0.125, 1)).To(Succeed())
		Expect(m.Counts().Sub(before).Inject).To(BeZero())
	})

	It("should list the built-in strategies", func() {
		Expect(StrategyNames()).To(Equal(
			[]string{NaiveName, PermutationName, PermutationPlusName}))

		s, err := StrategyByName(PermutationPlusName)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.FlagBits()).To(Equal(1))

		_, err = StrategyByName("pw+")
		Expect(IsArgumentError(err)).To(BeTrue())
	})

	It("should trace each write with one step per operation", func() {
		tracer := tracing.NewStepCountTracer(tracing.KindIs(WriteTaskKind))
		m, _ := MakeBuilder().
			WithNumWords(3).
			WithStrategyName(PermutationName).
			Build("SKRM")
		tracing.CollectTrace(m, tracer)

		for _, v := range values {
			Expect(m.Write(v, 1)).To(Succeed())
		}

		c := m.Counts()
		Expect(tracer.StepCount("inject")).To(Equal(c.Inject))
		Expect(tracer.StepCount("detect")).To(Equal(c.Detect))
		Expect(tracer.StepCount("remove")).To(Equal(c.Remove))
		Expect(tracer.StepCount("shift")).To(Equal(c.Shift))
		Expect(tracer.TaskCount("detect")).To(Equal(uint64(3)))
	})
})
