package alignment

import "fmt"

// MissingFieldError reports an accessor call for a property that is absent
// from the underlying record. Accessors never return sentinel values in place
// of absent properties.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("alignment: %s not present in record", e.Field)
}

// PositionOutOfRangeError reports a projection query outside the alignment's
// reference span.
type PositionOutOfRangeError struct {
	Pos   int64
	Start int64
	Len   uint64
}

func (e *PositionOutOfRangeError) Error() string {
	return fmt.Sprintf("alignment: reference position %d outside alignment span [%d,%d)",
		e.Pos, e.Start, e.Start+int64(e.Len))
}

// MateError reports a failed mate accessor: either the alignment has no mate,
// or the owning collection cannot locate the mate record.
type MateError struct {
	ID  string
	Msg string
}

func (e *MateError) Error() string {
	return fmt.Sprintf("alignment %s: %s", e.ID, e.Msg)
}
