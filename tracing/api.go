// Package tracing turns the hooks of a domain into task traces. A racetrack
// device opens one task per write and adds one step per primitive operation.
package tracing

import (
	"github.com/sarchlab/skrm/sim/hooking"
	"github.com/sarchlab/skrm/sim/naming"
)

// NamedHookable is a domain that tasks can be traced on.
type NamedHookable interface {
	naming.Named
	hooking.Hookable
	InvokeHook(hooking.HookCtx)
}

// Hook positions fired on a traced domain. The hook item is a Task that
// carries only what changed at that position.
var (
	HookPosTaskStart = &hooking.HookPos{Name: "TaskStart"}
	HookPosTaskStep  = &hooking.HookPos{Name: "TaskStep"}
	HookPosTaskEnd   = &hooking.HookPos{Name: "TaskEnd"}
)

// StartTask announces a task on domain. The fields are checked even when no
// hook listens.
func StartTask(
	id, parentID string,
	domain NamedHookable,
	kind, what string,
	detail any,
) {
	switch {
	case id == "":
		panic("task id must not be empty")
	case domain == nil:
		panic("task domain must not be nil")
	case kind == "" || what == "":
		panic("task kind and what must not be empty")
	}

	if domain.NumHooks() == 0 {
		return
	}

	if domain.Name() == "" {
		panic("a traced domain must have a name")
	}

	fire(domain, HookPosTaskStart, Task{
		ID:       id,
		ParentID: parentID,
		Kind:     kind,
		What:     what,
		Location: domain.Name(),
		Detail:   detail,
	})
}

// AddTaskStep announces that task id took the step what.
func AddTaskStep(id string, domain NamedHookable, what string) {
	if domain.NumHooks() == 0 {
		return
	}

	fire(domain, HookPosTaskStep, Task{
		ID:    id,
		Steps: []TaskStep{{What: what}},
	})
}

// EndTask announces the end of task id.
func EndTask(id string, domain NamedHookable) {
	if domain.NumHooks() == 0 {
		return
	}

	fire(domain, HookPosTaskEnd, Task{ID: id})
}

func fire(domain NamedHookable, pos *hooking.HookPos, task Task) {
	domain.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Pos:    pos,
		Item:   task,
	})
}
