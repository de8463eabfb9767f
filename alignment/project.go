package alignment

import (
	"github.com/grailbio/align/cigar"
)

// Projection is the image of one reference position on the read: the read
// bases occupying that position span [Start, Start+Len) in aligned
// (clip-trimmed) read coordinates. Len is 1 for a position aligned to a
// base, 0 for a position inside a deleted or skipped region, and the
// insertion length when the position sits immediately before an insertion.
type Projection struct {
	Start uint32
	Len   uint32
}

// Packed returns the projection as one 64-bit value, offset in the upper 32
// bits and length in the lower 32.
func (p Projection) Packed() uint64 {
	return uint64(p.Start)<<32 | uint64(p.Len)
}

// Project maps the 0-based absolute reference position refPos onto the read.
// Positions outside [Position(), Position()+Length()) fail with
// *PositionOutOfRangeError.
//
// The walk visits operations in CIGAR order with half-open reference spans.
// A position falling inside a Deletion or Skip projects to the zero-length
// range at the current read offset. A position equal to the accumulated
// reference offset at an Insertion projects across the whole insertion, so a
// position at the boundary of a deletion and a following insertion resolves
// to the insertion. Clips and padding are outside the projected coordinate
// space and move neither cursor.
func (a *Alignment) Project(refPos int64) (Projection, error) {
	start, err := a.Position()
	if err != nil {
		return Projection{}, err
	}
	geom, err := a.geometry()
	if err != nil {
		return Projection{}, err
	}
	rel := refPos - start
	if rel < 0 || uint64(rel) >= geom.RefLen {
		return Projection{}, &PositionOutOfRangeError{Pos: refPos, Start: start, Len: geom.RefLen}
	}

	var refCur, readCur int64
	for _, op := range a.ops {
		n := int64(op.Len())
		switch op.Kind() {
		case cigar.Match, cigar.Equal, cigar.Mismatch:
			if rel < refCur+n {
				return Projection{Start: uint32(readCur + rel - refCur), Len: 1}, nil
			}
			refCur += n
			readCur += n
		case cigar.Deletion, cigar.Skip:
			if rel < refCur+n {
				return Projection{Start: uint32(readCur), Len: 0}, nil
			}
			refCur += n
		case cigar.Insertion:
			if rel == refCur {
				return Projection{Start: uint32(readCur), Len: uint32(n)}, nil
			}
			readCur += n
		}
	}
	// Unreachable: the range check above bounds rel by the sum of
	// reference-consuming op lengths.
	return Projection{}, &PositionOutOfRangeError{Pos: refPos, Start: start, Len: geom.RefLen}
}
