package provider

import (
	"fmt"
	"strconv"

	"github.com/grailbio/align/alignment"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// collection is a loaded, immutable set of alignments keyed by ordinal id.
// The records are shared with the alignments it creates; nothing mutates
// them after construction.
type collection struct {
	header *sam.Header
	byID   map[string]*alignment.Alignment
	order  []*alignment.Alignment
}

// newCollection decodes recs into alignments with 1-based ordinal decimal
// ids, pairing each primary paired record with the opposite-segment record
// of the same name for mate resolution.
func newCollection(header *sam.Header, recs []*sam.Record) (*collection, error) {
	mateIDs := pairMates(recs)
	c := &collection{
		header: header,
		byID:   make(map[string]*alignment.Alignment, len(recs)),
		order:  make([]*alignment.Alignment, 0, len(recs)),
	}
	for i, rec := range recs {
		id := strconv.Itoa(i + 1)
		a, err := alignment.FromRecord(rec, alignment.Opts{ID: id, MateID: mateIDs[i]})
		if err != nil {
			return nil, errors.E(err, fmt.Sprintf("record %d (%s)", i+1, rec.Name))
		}
		c.byID[id] = a
		c.order = append(c.order, a)
	}
	return c, nil
}

// pairMates returns, for each record index, the ordinal id of its mate
// record, or "" when no mate record is present in the collection. Mates are
// primary records sharing a read name with opposite Read1/Read2 segment
// flags.
func pairMates(recs []*sam.Record) []string {
	byName := make(map[string][]int)
	for i, rec := range recs {
		if rec.Flags&sam.Paired == 0 || rec.Flags&(sam.Secondary|sam.Supplementary) != 0 {
			continue
		}
		byName[rec.Name] = append(byName[rec.Name], i)
	}
	mateIDs := make([]string, len(recs))
	for _, indices := range byName {
		for _, i := range indices {
			for _, j := range indices {
				if i == j {
					continue
				}
				if recs[i].Flags&sam.Read1 != recs[j].Flags&sam.Read1 ||
					recs[i].Flags&sam.Read2 != recs[j].Flags&sam.Read2 {
					mateIDs[i] = strconv.Itoa(j + 1)
					break
				}
			}
		}
	}
	return mateIDs
}

func (c *collection) lookup(id string) (*alignment.Alignment, error) {
	a, ok := c.byID[id]
	if !ok {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("alignment %s not found in collection", id))
	}
	return a, nil
}

func (c *collection) resolveMate(a *alignment.Alignment) (*alignment.Alignment, error) {
	if !a.HasMate() {
		return nil, errors.E(errors.NotExist, "alignment has no mate")
	}
	mateID, err := a.MateAlignmentID()
	if err != nil {
		return nil, errors.E(errors.NotExist, "mate record not present in collection")
	}
	return c.lookup(mateID)
}
