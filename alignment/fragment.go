package alignment

import (
	"github.com/grailbio/align/seq"
)

// Fragment is the sequencing-read capability set of an Alignment: the read
// identity and the base/quality views decoded from the record. It is
// embedded by value in Alignment, which delegates to it explicitly.
type Fragment struct {
	readID    string
	readGroup string

	// bases and quals are stored in aligned (reference) orientation, the
	// order the source record keeps them in. Qualities are phred+33.
	bases seq.View
	quals seq.View

	hasReadID    bool
	hasReadGroup bool
	hasBases     bool
	hasQuals     bool
}

// ReadID returns the read's identity.
func (f *Fragment) ReadID() (string, error) {
	if !f.hasReadID {
		return "", &MissingFieldError{Field: "read id"}
	}
	return f.readID, nil
}

// ReadGroup returns the read group the fragment belongs to.
func (f *Fragment) ReadGroup() (string, error) {
	if !f.hasReadGroup {
		return "", &MissingFieldError{Field: "read group"}
	}
	return f.readGroup, nil
}

func (f *Fragment) basesView() (seq.View, error) {
	if !f.hasBases {
		return seq.View{}, &MissingFieldError{Field: "fragment bases"}
	}
	return f.bases, nil
}

func (f *Fragment) qualsView() (seq.View, error) {
	if !f.hasQuals {
		return seq.View{}, &MissingFieldError{Field: "fragment qualities"}
	}
	return f.quals, nil
}
