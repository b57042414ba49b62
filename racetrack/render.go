package racetrack

import "strings"

// Render draws the storage one racetrack per line. Access ports are drawn
// between bars, as in
//
//	0000 |1| 0000 |0| 0000 |0| 0000
func (m *SKRM) Render() string {
	var sb strings.Builder

	l := m.layout
	for r := 0; r < l.NumRacetrack(); r++ {
		base := l.TrackOffset(r)

		for block := 0; block < l.NumBlocks(); block++ {
			start := base + l.BlockOffset(block)
			m.renderBits(&sb, start, start+l.WordSize())

			if l.HasAPAfter(block) {
				sb.WriteString(" |")
				m.renderBits(&sb, start+l.WordSize(), start+l.WordSize()+1)
				sb.WriteString("| ")
			}
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

func (m *SKRM) renderBits(sb *strings.Builder, from, to int) {
	for i := from; i < to; i++ {
		sb.WriteByte('0' + m.storage.Bit(i))
	}
}

// RenderWord returns the bits of data word w on the first racetrack.
func (m *SKRM) RenderWord(w int) (string, error) {
	if !m.layout.ValidWord(w) {
		return "", newArgumentError(
			"word must be between 0 and %d (num_words - 1), got %d",
			m.layout.NumWords()-1, w)
	}

	var sb strings.Builder

	start := m.layout.WordOffset(w)
	m.renderBits(&sb, start, start+m.layout.WordSize())

	return sb.String(), nil
}
