package racetrack

import (
	"github.com/sarchlab/skrm/sim/hooking"
	"github.com/sarchlab/skrm/tracing"
)

// Inject creates a carrier at access port ap.
func (m *SKRM) Inject(ap int) error {
	if err := m.apMustBeValid(ap); err != nil {
		return err
	}

	m.storage.set(m.layout.APOffset(ap), true)
	m.issue(HookPosInject, OpEvent{Kind: OpInject, AP: ap, EndAP: ap})

	return nil
}

// Detect returns the bit at access port ap.
func (m *SKRM) Detect(ap int) (uint8, error) {
	if err := m.apMustBeValid(ap); err != nil {
		return 0, err
	}

	b := m.storage.Bit(m.layout.APOffset(ap))
	m.issue(HookPosDetect, OpEvent{Kind: OpDetect, AP: ap, EndAP: ap})

	return b, nil
}

// Remove clears the carrier at access port ap.
func (m *SKRM) Remove(ap int) error {
	if err := m.apMustBeValid(ap); err != nil {
		return err
	}

	m.storage.set(m.layout.APOffset(ap), false)
	m.issue(HookPosRemove, OpEvent{Kind: OpRemove, AP: ap, EndAP: ap})

	return nil
}

// Shift drives the bits between two access ports one position from startAP
// toward endAP. The bit that arrives at one port comes from its neighbor and
// the port at startAP is left empty.
func (m *SKRM) Shift(startAP, endAP int) error {
	if err := m.apMustBeValid(startAP); err != nil {
		return err
	}

	if err := m.apMustBeValid(endAP); err != nil {
		return err
	}

	start := m.layout.APOffset(startAP)
	end := m.layout.APOffset(endAP)

	switch {
	case startAP < endAP:
		m.storage.moveUp(start, end)
	case endAP < startAP:
		m.storage.moveDown(end, start)
	default:
		return newArgumentError(
			"the access ports of shift operation can not be the same")
	}

	m.storage.set(start, false)
	m.issue(HookPosShift, OpEvent{Kind: OpShift, AP: startAP, EndAP: endAP})

	return nil
}

// ReuseCarrier parks an owned carrier at ap without counting an injection.
func (m *SKRM) ReuseCarrier(ap int) error {
	if err := m.apMustBeValid(ap); err != nil {
		return err
	}

	m.storage.set(m.layout.APOffset(ap), true)

	if m.NumHooks() > 0 {
		m.InvokeHook(hooking.HookCtx{
			Domain: m,
			Pos:    HookPosReuse,
			Item:   OpEvent{Kind: OpInject, AP: ap, EndAP: ap},
		})
	}

	return nil
}

// RetireCarrier counts the shift and remove that discard a leftover carrier.
// The storage is not touched.
func (m *SKRM) RetireCarrier() {
	m.issue(HookPosShift, OpEvent{Kind: OpShift, AP: -1, EndAP: -1, Retired: true})
	m.issue(HookPosRemove, OpEvent{Kind: OpRemove, AP: -1, EndAP: -1, Retired: true})
}

func (m *SKRM) apMustBeValid(ap int) error {
	if !m.layout.ValidAP(ap) {
		return newArgumentError(
			"AP must be between 0 and num_words (%d), got %d",
			m.layout.NumWords(), ap)
	}

	return nil
}

func (m *SKRM) issue(pos *hooking.HookPos, e OpEvent) {
	m.counts.add(e.Kind)

	if m.NumHooks() == 0 {
		return
	}

	m.InvokeHook(hooking.HookCtx{
		Domain: m,
		Pos:    pos,
		Item:   e,
	})

	if m.taskID != "" {
		tracing.AddTaskStep(m.taskID, m, e.Kind.String())
	}
}
