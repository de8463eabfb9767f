package alignment

// Filter bits select alignments during enumeration. They are or'd together
// and consumed by enumeration collaborators; the core only defines the
// values.
type Filter int

const (
	// PassFailed passes reads rejected by platform/vendor quality criteria.
	PassFailed Filter = 1 << iota
	// PassDuplicates passes PCR and optical duplicates.
	PassDuplicates
	// MinMapQuality passes alignments with mapping quality >= a parameter.
	MinMapQuality
	// MaxMapQuality passes alignments with mapping quality <= a parameter.
	MaxMapQuality
	// NoWraparound excludes leading wrapped-around alignments to circular
	// references.
	NoWraparound
	// StartWithinSlice requires the alignment start position to fall within
	// the queried slice, rather than any overlap.
	StartWithinSlice
)

// Category classifies an alignment as primary or secondary (alternate).
type Category int

const (
	// Primary marks the representative alignment of a read.
	Primary Category = 1
	// Secondary marks alternate alignments.
	Secondary Category = 2
	// All selects both categories during enumeration.
	All Category = Primary | Secondary
)

func (c Category) String() string {
	switch c {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case All:
		return "all"
	}
	return "invalid"
}

// Edge selects a soft clip edge for SoftClip.
type Edge int

const (
	// ClipLeft selects the clip preceding the first aligned base.
	ClipLeft Edge = iota
	// ClipRight selects the clip following the last aligned base.
	ClipRight
)
