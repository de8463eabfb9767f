package provider

import (
	"github.com/grailbio/align/alignment"
	"github.com/grailbio/hts/sam"
)

// fakeProvider is only for unittests. It serves the given records from
// memory.
type fakeProvider struct {
	coll *collection
	err  error
}

// NewFakeProvider creates a provider serving "recs" without touching the
// filesystem. Ids are assigned the same way the file-backed provider assigns
// them.
func NewFakeProvider(header *sam.Header, recs []*sam.Record) Provider {
	coll, err := newCollection(header, recs)
	return &fakeProvider{coll: coll, err: err}
}

// Header implements the Provider interface.
func (p *fakeProvider) Header() (*sam.Header, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.coll.header, nil
}

// Lookup implements the Provider interface.
func (p *fakeProvider) Lookup(id string) (*alignment.Alignment, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.coll.lookup(id)
}

// NumAlignments implements the Provider interface.
func (p *fakeProvider) NumAlignments() (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	return len(p.coll.order), nil
}

// ResolveMate implements the Provider and alignment.Resolver interfaces.
func (p *fakeProvider) ResolveMate(a *alignment.Alignment) (*alignment.Alignment, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.coll.resolveMate(a)
}

// Close implements the Provider interface.
func (p *fakeProvider) Close() error { return nil }
