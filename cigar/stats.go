package cigar

import "fmt"

// Stats holds the scalar properties derived from one pass over a Cigar:
// the reference-projected length, the read length excluding hard clips, and
// the soft clip length at each edge. Orientation is a property of the record,
// not of the operation sequence, so it does not appear here.
type Stats struct {
	// RefLen is the number of reference bases the alignment spans: the sum
	// of the lengths of Match/Equal/Mismatch, Deletion and Skip operations.
	RefLen uint64
	// ReadLen is the number of read bases present in the record, including
	// soft-clipped bases.
	ReadLen int
	// LeftClip and RightClip are the soft clip lengths at the leading and
	// trailing edge, 0 when absent.
	LeftClip  uint32
	RightClip uint32
}

// AlignedLen returns the read length with soft clips removed.
func (s Stats) AlignedLen() int {
	return s.ReadLen - int(s.LeftClip) - int(s.RightClip)
}

// StructureError reports a structurally impossible operation placement, such
// as a soft clip in the interior of the alignment.
type StructureError struct {
	Cigar string
	Msg   string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("cigar: invalid structure in %q: %s", e.Cigar, e.Msg)
}

// Stats computes the derived geometry in a single pass. It fails with
// *StructureError if a hard clip appears anywhere but the extreme ends, or a
// soft clip appears anywhere but the ends (a terminal hard clip may sit
// outside a soft clip, per the SAM rules).
func (c Cigar) Stats() (Stats, error) {
	var stats Stats
	for i, op := range c {
		k := op.Kind()
		switch k {
		case HardClip:
			if i != 0 && i != len(c)-1 {
				return Stats{}, &StructureError{Cigar: c.String(), Msg: "hard clip inside alignment"}
			}
		case SoftClip:
			first := i == 0 || (i == 1 && c[0].Kind() == HardClip)
			last := i == len(c)-1 || (i == len(c)-2 && c[len(c)-1].Kind() == HardClip)
			if !first && !last {
				return Stats{}, &StructureError{Cigar: c.String(), Msg: "soft clip inside alignment"}
			}
			if first {
				stats.LeftClip = uint32(op.Len())
			} else {
				stats.RightClip = uint32(op.Len())
			}
		}
		con := k.Consumes()
		stats.RefLen += uint64(op.Len() * con.Ref)
		stats.ReadLen += op.Len() * con.Read
	}
	return stats, nil
}
