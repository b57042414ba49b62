package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/skrm/sim/hooking"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Api", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("with hooks", func() {
		BeforeEach(func() {
			domain.EXPECT().NumHooks().Return(1).AnyTimes()
		})

		It("should panic if ID is not given", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("", "123", domain, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if domain is nil", func() {
			Expect(func() {
				StartTask("id", "123", nil, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if domain's name is empty", func() {
			domain.EXPECT().Name().Return("").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "kind", "what", nil)
			}).Should(Panic())
		})

		It("should panic if kind or what is empty", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			Expect(func() {
				StartTask("id", "123", domain, "", "what", nil)
			}).Should(Panic())
			Expect(func() {
				StartTask("id", "123", domain, "kind", "", nil)
			}).Should(Panic())
		})

		It("should invoke hooks at the start, steps and end of a task", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()
			gomock.InOrder(
				domain.EXPECT().InvokeHook(hooking.HookCtx{
					Domain: domain,
					Pos:    HookPosTaskStart,
					Item: Task{
						ID:       "id",
						ParentID: "p",
						Kind:     "write",
						What:     "naive",
						Location: "domain",
						Detail:   7,
					},
				}),
				domain.EXPECT().InvokeHook(hooking.HookCtx{
					Domain: domain,
					Pos:    HookPosTaskStep,
					Item: Task{
						ID:    "id",
						Steps: []TaskStep{{What: "shift"}},
					},
				}),
				domain.EXPECT().InvokeHook(hooking.HookCtx{
					Domain: domain,
					Pos:    HookPosTaskEnd,
					Item:   Task{ID: "id"},
				}),
			)

			StartTask("id", "p", domain, "write", "naive", 7)
			AddTaskStep("id", domain, "shift")
			EndTask("id", domain)
		})
	})

	It("should not invoke anything without hooks", func() {
		domain.EXPECT().NumHooks().Return(0).AnyTimes()

		StartTask("id", "", domain, "write", "naive", nil)
		AddTaskStep("id", domain, "shift")
		EndTask("id", domain)
	})

	It("should still validate fields without hooks", func() {
		domain.EXPECT().NumHooks().Return(0).AnyTimes()

		Expect(func() {
			StartTask("", "", domain, "write", "naive", nil)
		}).Should(Panic())
	})
})
