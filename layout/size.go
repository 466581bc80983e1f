package layout

import "math/bits"

// Size is a byte count.
type Size uint32

// IsZero reports whether the size is zero bytes.
func (s Size) IsZero() bool { return s == 0 }

// RoundUpTo returns the smallest multiple of a that is >= s.
// a must be a power of two.
func (s Size) RoundUpTo(a Alignment) Size {
	return Size((uint32(s) + uint32(a) - 1) &^ (uint32(a) - 1))
}

// Alignment is a power-of-two byte boundary. The zero value is invalid;
// one byte is the weakest alignment.
type Alignment uint32

// Max returns the stricter of the two alignments.
func (a Alignment) Max(b Alignment) Alignment {
	if b > a {
		return b
	}
	return a
}

// AlignmentAt returns the alignment known to hold at the given byte offset
// from an address of alignment a. Offset zero keeps the full alignment;
// otherwise it degrades to the largest power of two dividing the offset.
func (a Alignment) AlignmentAt(off Size) Alignment {
	if off == 0 {
		return a
	}
	lowBit := Alignment(1) << bits.TrailingZeros32(uint32(off))
	if lowBit < a {
		return lowBit
	}
	return a
}
