// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package provider supplies alignment records to the read-only access layer.
// A Provider loads a SAM or BAM collection, assigns each alignment an id
// unique within the collection, and resolves mates on demand.
package provider

import (
	"io"
	"strings"
	"sync"

	"github.com/grailbio/align/alignment"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// Provider is a read-only, id-addressable collection of alignments.
// Thread safe once loaded.
type Provider interface {
	// Header returns the collection's header. The caller must not modify
	// the returned object.
	Header() (*sam.Header, error)

	// Lookup returns the alignment with the given collection-unique id.
	// An unknown id fails with a NotExist error.
	Lookup(id string) (*alignment.Alignment, error)

	// NumAlignments returns the number of alignments in the collection.
	NumAlignments() (int, error)

	// ResolveMate locates a's mate within the collection.
	ResolveMate(a *alignment.Alignment) (*alignment.Alignment, error)

	// Close releases the provider. It must be called exactly once.
	Close() error
}

// FileType represents the type of an alignment file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// SAM text file.
	SAM
	// BAM file.
	BAM
)

// ParseFileType parses a file type string ("sam" or "bam"). On error it
// returns Unknown.
func ParseFileType(name string) FileType {
	switch name {
	case "sam":
		return SAM
	case "bam":
		return BAM
	default:
		return Unknown
	}
}

// GuessFileType returns the file type implied by the pathname. Returns
// Unknown on error.
func GuessFileType(path string) FileType {
	if strings.HasSuffix(path, ".sam") {
		return SAM
	}
	if strings.HasSuffix(path, ".bam") {
		return BAM
	}
	return Unknown
}

// Opts defines options for NewProvider.
type Opts struct {
	// Type forces the file type instead of guessing it from the path.
	Type FileType
}

func mergeOpts(optList []Opts) Opts {
	opts := Opts{}
	for _, o := range optList {
		if o.Type != Unknown {
			opts.Type = o.Type
		}
	}
	return opts
}

// NewProvider creates a Provider for the SAM or BAM file at path. The file
// is read on first use; I/O failures surface from the accessor that
// triggers the load.
func NewProvider(path string, optList ...Opts) Provider {
	opts := mergeOpts(optList)
	ftype := opts.Type
	if ftype == Unknown {
		ftype = GuessFileType(path)
	}
	return &fileProvider{path: path, ftype: ftype}
}

type fileProvider struct {
	path  string
	ftype FileType

	once sync.Once
	coll *collection
	err  error
}

func (p *fileProvider) load() (*collection, error) {
	p.once.Do(func() {
		p.coll, p.err = p.doLoad()
		if p.err != nil {
			p.coll = nil
		}
	})
	return p.coll, p.err
}

func (p *fileProvider) doLoad() (*collection, error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, p.path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p.path)
	}
	defer in.Close(ctx) // nolint: errcheck

	var (
		header *sam.Header
		recs   []*sam.Record
	)
	switch p.ftype {
	case SAM:
		r, err := sam.NewReader(in.Reader(ctx))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: read SAM header", p.path)
		}
		header = r.Header()
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, errors.Wrapf(err, "%s: read SAM record", p.path)
			}
			recs = append(recs, rec)
		}
	case BAM:
		r, err := bam.NewReader(in.Reader(ctx), 1)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: read BAM header", p.path)
		}
		header = r.Header()
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = r.Close()
				return nil, errors.Wrapf(err, "%s: read BAM record", p.path)
			}
			recs = append(recs, rec)
		}
		if err := r.Close(); err != nil {
			return nil, errors.Wrapf(err, "%s: close BAM reader", p.path)
		}
	default:
		return nil, errors.Errorf("%s: cannot determine file type", p.path)
	}
	vlog.VI(1).Infof("%s: loaded %d records", p.path, len(recs))
	return newCollection(header, recs)
}

// Header implements the Provider interface.
func (p *fileProvider) Header() (*sam.Header, error) {
	coll, err := p.load()
	if err != nil {
		return nil, err
	}
	return coll.header, nil
}

// Lookup implements the Provider interface.
func (p *fileProvider) Lookup(id string) (*alignment.Alignment, error) {
	coll, err := p.load()
	if err != nil {
		return nil, err
	}
	return coll.lookup(id)
}

// NumAlignments implements the Provider interface.
func (p *fileProvider) NumAlignments() (int, error) {
	coll, err := p.load()
	if err != nil {
		return 0, err
	}
	return len(coll.order), nil
}

// ResolveMate implements the Provider and alignment.Resolver interfaces.
func (p *fileProvider) ResolveMate(a *alignment.Alignment) (*alignment.Alignment, error) {
	coll, err := p.load()
	if err != nil {
		return nil, err
	}
	return coll.resolveMate(a)
}

// Close implements the Provider interface.
func (p *fileProvider) Close() error {
	return nil
}
