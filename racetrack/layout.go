package racetrack

// Geometry describes the shape of a racetrack memory.
type Geometry struct {
	// WordSize is the number of bits in a data word, before any flag bit the
	// write strategy adds.
	WordSize int

	// NumWords is the number of addressable words on each racetrack.
	NumWords int

	// NumOverhead is the number of word-sized buffer blocks on each
	// racetrack. One buffer leads the track and the others trail it.
	NumOverhead int

	// NumRacetrack is the number of parallel racetracks.
	NumRacetrack int
}

func (g Geometry) mustBeValid() error {
	if g.WordSize <= 0 {
		return newArgumentError("word size must be positive, got %d", g.WordSize)
	}

	if g.NumWords <= 0 {
		return newArgumentError(
			"number of words must be positive, got %d", g.NumWords)
	}

	if g.NumRacetrack <= 0 {
		return newArgumentError(
			"number of racetracks must be positive, got %d", g.NumRacetrack)
	}

	if g.NumOverhead < 2 {
		return newArgumentError(
			"number of overhead blocks must be at least 2, got %d",
			g.NumOverhead)
	}

	return nil
}

// Layout maps blocks and access ports to bit offsets in the flat storage.
//
// Each racetrack is a run of NumOverhead + NumWords blocks of wordSize bits.
// Access port k sits right after block k, for k in [0, NumWords]. Block 0 is
// the leading buffer, blocks 1 to NumWords hold the data words, and the
// remaining blocks are trailing buffers with no port in between.
type Layout struct {
	wordSize     int
	numWords     int
	numOverhead  int
	numRacetrack int
}

// NewLayout creates the layout of g with the given effective word size.
func NewLayout(g Geometry, wordSize int) Layout {
	return Layout{
		wordSize:     wordSize,
		numWords:     g.NumWords,
		numOverhead:  g.NumOverhead,
		numRacetrack: g.NumRacetrack,
	}
}

// WordSize returns the number of bits in a block.
func (l Layout) WordSize() int {
	return l.wordSize
}

// NumWords returns the number of data words on a racetrack.
func (l Layout) NumWords() int {
	return l.numWords
}

// NumAPs returns the number of access ports on a racetrack.
func (l Layout) NumAPs() int {
	return l.numWords + 1
}

// NumBlocks returns the number of blocks on a racetrack.
func (l Layout) NumBlocks() int {
	return l.numOverhead + l.numWords
}

// NumRacetrack returns the number of racetracks.
func (l Layout) NumRacetrack() int {
	return l.numRacetrack
}

// TrackLen returns the number of bits of a racetrack.
func (l Layout) TrackLen() int {
	return l.wordSize*(l.numOverhead+l.numWords) + l.numWords + 1
}

// Len returns the number of bits of the whole storage.
func (l Layout) Len() int {
	return l.numRacetrack * l.TrackLen()
}

// TrackOffset returns the offset of the first bit of racetrack r.
func (l Layout) TrackOffset(r int) int {
	return r * l.TrackLen()
}

// APOffset returns the offset of access port ap on the first racetrack.
func (l Layout) APOffset(ap int) int {
	return (l.wordSize+1)*(ap+1) - 1
}

// BlockOffset returns the offset of the first bit of block on the first
// racetrack.
func (l Layout) BlockOffset(block int) int {
	if block <= l.numWords+1 {
		return (l.wordSize + 1) * block
	}

	trailing := block - (l.numWords + 1)

	return (l.wordSize+1)*(l.numWords+1) + trailing*l.wordSize
}

// WordOffset returns the offset of the first bit of data word w on the first
// racetrack.
func (l Layout) WordOffset(w int) int {
	return l.BlockOffset(w + 1)
}

// HasAPAfter reports whether an access port follows block.
func (l Layout) HasAPAfter(block int) bool {
	return block <= l.numWords
}

// ValidAP reports whether ap is an access port index.
func (l Layout) ValidAP(ap int) bool {
	return ap >= 0 && ap <= l.numWords
}

// ValidWord reports whether w is a data word index.
func (l Layout) ValidWord(w int) bool {
	return w >= 0 && w < l.numWords
}
