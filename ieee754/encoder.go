// Package ieee754 converts single-precision floats into the bit strings that
// are written into racetrack words.
package ieee754

import (
	"math"
	"strings"
)

// SingleBits is the number of bits in a single-precision float.
const SingleBits = 32

// An Encoder turns a float into a string of '0' and '1' characters, most
// significant bit first.
type Encoder interface {
	// Encode returns the 32-bit pattern of v.
	Encode(v float32) string

	// EncodeFlipped returns the 33-bit pattern of v, led by a flag bit. When
	// the flag is '1', the remaining bits are the complement of Encode(v).
	EncodeFlipped(v float32) string
}

// Default is the IEEE-754 encoder.
var Default Encoder = standardEncoder{}

type standardEncoder struct{}

func (standardEncoder) Encode(v float32) string {
	return Encode(v)
}

func (standardEncoder) EncodeFlipped(v float32) string {
	return EncodeFlipped(v)
}

// Encode returns the big-endian IEEE-754 bit pattern of v.
func Encode(v float32) string {
	bits := math.Float32bits(v)

	var sb strings.Builder
	sb.Grow(SingleBits)

	for i := SingleBits - 1; i >= 0; i-- {
		if bits&(1<<uint(i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

// EncodeFlipped is Flip(Encode(v)).
func EncodeFlipped(v float32) string {
	return Flip(Encode(v))
}

// Flip prepends a flag bit to bits. If more than half of the bits are set,
// the flag is '1' and the bits are complemented, so that the result never
// needs more set bits than necessary.
func Flip(bits string) string {
	if 2*PopCount(bits) > len(bits) {
		return "1" + Complement(bits)
	}

	return "0" + bits
}

// Complement swaps every '0' and '1' in bits.
func Complement(bits string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '0':
			return '1'
		case '1':
			return '0'
		default:
			return r
		}
	}, bits)
}

// PopCount returns the number of '1' characters in bits.
func PopCount(bits string) int {
	return strings.Count(bits, "1")
}

// LeadingOne returns the index of the first '1' in bits, or len(bits) if
// there is none.
func LeadingOne(bits string) int {
	idx := strings.IndexByte(bits, '1')
	if idx < 0 {
		return len(bits)
	}

	return idx
}

// IsBinary reports whether bits only contains '0' and '1'.
func IsBinary(bits string) bool {
	for i := 0; i < len(bits); i++ {
		if bits[i] != '0' && bits[i] != '1' {
			return false
		}
	}

	return true
}
