// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package alignment implements an immutable view of one aligned sequencing
// read: the read's bases and qualities, its mapping onto a reference
// subsequence described by a CIGAR operation sequence, and the
// reference-to-read coordinate projection over that sequence.
//
// An Alignment is decoded once from a sam.Record and never mutated. The
// derived CIGAR geometry is memoized on first access, so every query is safe
// for concurrent use without locking.
package alignment

import (
	"sync"

	"github.com/grailbio/align/cigar"
	"github.com/grailbio/align/seq"
	"github.com/grailbio/hts/sam"
)

var (
	rgTag = sam.Tag{'R', 'G'}
	xsTag = sam.Tag{'X', 'S'}
)

// Resolver locates an alignment's mate within the owning collection.
// Implemented by provider.Provider.
type Resolver interface {
	// ResolveMate returns the mate alignment of a, or an error if the mate
	// record cannot be located.
	ResolveMate(a *Alignment) (*Alignment, error)
}

// ReferenceFetcher supplies reference bases for ReferenceBases. The fetch of
// reference sequence is an external concern; implementations typically wrap a
// FASTA reader.
type ReferenceFetcher interface {
	// ReferenceBases returns length bases of the named reference starting at
	// the 0-based position start.
	ReferenceBases(spec string, start int64, length uint64) ([]byte, error)
}

// Opts carries collection-assigned identity into FromRecord. The owning
// collection assigns ids unique within itself; standalone alignments may
// leave them empty, in which case the id accessors report the fields as
// missing.
type Opts struct {
	// ID is the alignment's id within the owning collection.
	ID string
	// MateID is the id of the mate alignment, when the collection has
	// located one.
	MateID string
}

// Alignment is an immutable aligned read. It exclusively owns its decoded
// operation sequence and memoized geometry and shares the backing record
// with the owning collection. Copying an Alignment pointer duplicates the
// handle, never the record buffer.
type Alignment struct {
	frag Fragment

	id       string
	mateID   string
	rec      *sam.Record
	ops      cigar.Cigar
	category Category
	reversed bool
	hasMate  bool

	geomOnce sync.Once
	geom     cigar.Stats
	geomErr  error
}

// FromRecord decodes one sam.Record into an Alignment. SAM text and BAM
// records both surface as *sam.Record, so the decode is source-format
// agnostic. The record's CIGAR is decoded into an owned operation sequence;
// a CIGAR containing operations outside the {M,I,D,N,S,H,P,=,X} set fails
// with *cigar.StructureError.
func FromRecord(rec *sam.Record, opts Opts) (*Alignment, error) {
	ops, err := convertCigar(rec.Cigar)
	if err != nil {
		return nil, err
	}
	a := &Alignment{
		id:       opts.ID,
		mateID:   opts.MateID,
		rec:      rec,
		ops:      ops,
		category: categoryOf(rec),
		reversed: rec.Flags&sam.Reverse != 0,
		hasMate:  recordHasMate(rec),
	}
	a.frag = decodeFragment(rec)
	return a, nil
}

// kindOf maps the hts op numbering onto ours. Both follow the BAM encoding
// order, but the mapping is explicit so a numbering drift surfaces here.
var kindOf = map[sam.CigarOpType]cigar.Kind{
	sam.CigarMatch:       cigar.Match,
	sam.CigarInsertion:   cigar.Insertion,
	sam.CigarDeletion:    cigar.Deletion,
	sam.CigarSkipped:     cigar.Skip,
	sam.CigarSoftClipped: cigar.SoftClip,
	sam.CigarHardClipped: cigar.HardClip,
	sam.CigarPadded:      cigar.Padding,
	sam.CigarEqual:       cigar.Equal,
	sam.CigarMismatch:    cigar.Mismatch,
}

func convertCigar(c sam.Cigar) (cigar.Cigar, error) {
	if len(c) == 0 {
		return nil, nil
	}
	ops := make(cigar.Cigar, 0, len(c))
	for _, co := range c {
		k, ok := kindOf[co.Type()]
		if !ok {
			return nil, &cigar.StructureError{Cigar: c.String(), Msg: "unsupported operation " + co.Type().String()}
		}
		ops = append(ops, cigar.NewOp(k, co.Len()))
	}
	return ops, nil
}

func categoryOf(rec *sam.Record) Category {
	if rec.Flags&(sam.Secondary|sam.Supplementary) != 0 {
		return Secondary
	}
	return Primary
}

func recordHasMate(rec *sam.Record) bool {
	return rec.Flags&sam.Paired != 0 && rec.Flags&sam.MateUnmapped == 0 && rec.MateRef != nil
}

func decodeFragment(rec *sam.Record) Fragment {
	frag := Fragment{}
	if rec.Name != "" && rec.Name != "*" {
		frag.readID = rec.Name
		frag.hasReadID = true
	}
	if aux := rec.AuxFields.Get(rgTag); aux != nil {
		if rg, ok := aux.Value().(string); ok {
			frag.readGroup = rg
			frag.hasReadGroup = true
		}
	}
	if rec.Seq.Length > 0 {
		frag.bases = seq.NewView(rec.Seq.Expand())
		frag.hasBases = true
	}
	// A record without qualities carries 0xff filler.
	if len(rec.Qual) > 0 && rec.Qual[0] != 0xff {
		q := make([]byte, len(rec.Qual))
		for i, v := range rec.Qual {
			q[i] = v + 33
		}
		frag.quals = seq.NewView(q)
		frag.hasQuals = true
	}
	return frag
}

// geometry memoizes the single-pass CIGAR stats. Compute-once via sync.Once;
// the result is pure, so concurrent first accesses are safe.
func (a *Alignment) geometry() (cigar.Stats, error) {
	a.geomOnce.Do(func() {
		a.geom, a.geomErr = a.ops.Stats()
	})
	return a.geom, a.geomErr
}

// ID returns the alignment's id, unique within the owning collection.
func (a *Alignment) ID() (string, error) {
	if a.id == "" {
		return "", &MissingFieldError{Field: "alignment id"}
	}
	return a.id, nil
}

// ReferenceSpec returns the name of the reference the read is aligned to.
func (a *Alignment) ReferenceSpec() (string, error) {
	if a.rec.Ref == nil {
		return "", &MissingFieldError{Field: "reference"}
	}
	return a.rec.Ref.Name(), nil
}

// Position returns the alignment's 0-based start position on the reference.
func (a *Alignment) Position() (int64, error) {
	if a.rec.Ref == nil || a.rec.Flags&sam.Unmapped != 0 {
		return 0, &MissingFieldError{Field: "alignment position"}
	}
	return int64(a.rec.Pos), nil
}

// Length returns the length of the alignment's projection on the reference.
func (a *Alignment) Length() (uint64, error) {
	geom, err := a.geometry()
	if err != nil {
		return 0, err
	}
	return geom.RefLen, nil
}

// MappingQuality returns the record's mapping quality. 0xff marks an
// unavailable quality in the source formats.
func (a *Alignment) MappingQuality() (int, error) {
	if a.rec.MapQ == 0xff {
		return 0, &MissingFieldError{Field: "mapping quality"}
	}
	return int(a.rec.MapQ), nil
}

// Category reports whether this is the read's primary alignment or an
// alternate one.
func (a *Alignment) Category() Category { return a.category }

// IsReversedOrientation reports whether the read aligned to the reverse
// strand of the reference.
func (a *Alignment) IsReversedOrientation() bool { return a.reversed }

// TemplateLength returns the observed template length of the read pair.
func (a *Alignment) TemplateLength() (uint64, error) {
	if a.rec.Flags&sam.Paired == 0 || a.rec.TempLen == 0 {
		return 0, &MissingFieldError{Field: "template length"}
	}
	n := a.rec.TempLen
	if n < 0 {
		n = -n
	}
	return uint64(n), nil
}

// SoftClip returns the soft clip length at the given edge, 0 when the edge
// is unclipped.
func (a *Alignment) SoftClip(edge Edge) (int, error) {
	geom, err := a.geometry()
	if err != nil {
		return 0, err
	}
	if edge == ClipLeft {
		return int(geom.LeftClip), nil
	}
	return int(geom.RightClip), nil
}

// ShortCigar renders the alignment's CIGAR in short (run-merged) form. With
// clipped=true, clip operations are omitted; their lengths are available via
// SoftClip.
func (a *Alignment) ShortCigar(clipped bool) (string, error) {
	if err := a.checkCigar(); err != nil {
		return "", err
	}
	return a.ops.Short(clipped), nil
}

// LongCigar renders the alignment's CIGAR in long (one op per unit) form.
func (a *Alignment) LongCigar(clipped bool) (string, error) {
	if err := a.checkCigar(); err != nil {
		return "", err
	}
	return a.ops.Long(clipped), nil
}

func (a *Alignment) checkCigar() error {
	if len(a.ops) == 0 {
		return &MissingFieldError{Field: "cigar"}
	}
	// Rendering a structurally invalid sequence would produce clipped forms
	// with no defined meaning.
	_, err := a.geometry()
	return err
}

// Cigar returns the decoded operation sequence. The caller must not modify
// it.
func (a *Alignment) Cigar() cigar.Cigar { return a.ops }

// RNAOrientation returns '+' if the positive strand is transcribed, '-' if
// the negative strand is, and '?' when the record carries no usable strand
// tag.
func (a *Alignment) RNAOrientation() byte {
	aux := a.rec.AuxFields.Get(xsTag)
	if aux == nil {
		return '?'
	}
	var strand byte
	switch v := aux.Value().(type) {
	case byte:
		strand = v
	case string:
		if len(v) == 1 {
			strand = v[0]
		}
	}
	if strand == '+' || strand == '-' {
		return strand
	}
	return '?'
}

// AlignedBases returns the full read bases in their aligned (reference)
// orientation, including soft-clipped bases.
func (a *Alignment) AlignedBases() (seq.View, error) {
	return a.frag.basesView()
}

// ClippedBases returns the read bases with soft clips removed, in the read's
// original orientation (reverse-complemented when the alignment is
// reversed).
func (a *Alignment) ClippedBases() (seq.View, error) {
	v, err := a.frag.basesView()
	if err != nil {
		return seq.View{}, err
	}
	clipped, err := a.trimClips(v)
	if err != nil {
		return seq.View{}, err
	}
	if a.reversed {
		return seq.ReverseComplement(clipped), nil
	}
	return clipped, nil
}

// ClippedQualities returns the phred+33 quality string with soft clips
// removed, in the read's original orientation.
func (a *Alignment) ClippedQualities() (seq.View, error) {
	v, err := a.frag.qualsView()
	if err != nil {
		return seq.View{}, err
	}
	clipped, err := a.trimClips(v)
	if err != nil {
		return seq.View{}, err
	}
	if a.reversed {
		return seq.Reverse(clipped), nil
	}
	return clipped, nil
}

func (a *Alignment) trimClips(v seq.View) (seq.View, error) {
	geom, err := a.geometry()
	if err != nil {
		return seq.View{}, err
	}
	return v.Slice(int(geom.LeftClip), v.Len()-int(geom.RightClip)), nil
}

// ReadGroup returns the read group of the underlying fragment.
func (a *Alignment) ReadGroup() (string, error) { return a.frag.ReadGroup() }

// ReadID returns the read id of the underlying fragment.
func (a *Alignment) ReadID() (string, error) { return a.frag.ReadID() }

// ReferenceBases returns the reference subsequence the alignment spans,
// fetched through f.
func (a *Alignment) ReferenceBases(f ReferenceFetcher) (seq.View, error) {
	spec, err := a.ReferenceSpec()
	if err != nil {
		return seq.View{}, err
	}
	start, err := a.Position()
	if err != nil {
		return seq.View{}, err
	}
	length, err := a.Length()
	if err != nil {
		return seq.View{}, err
	}
	b, err := f.ReferenceBases(spec, start, length)
	if err != nil {
		return seq.View{}, err
	}
	return seq.NewView(b), nil
}

// HasMate reports whether the read has an aligned mate. It is the one query
// that never fails: absence is reported as false.
func (a *Alignment) HasMate() bool { return a.hasMate }

// MateAlignmentID returns the id of the mate alignment within the owning
// collection.
func (a *Alignment) MateAlignmentID() (string, error) {
	if !a.hasMate {
		return "", &MateError{ID: a.id, Msg: "alignment has no mate"}
	}
	if a.mateID == "" {
		return "", &MissingFieldError{Field: "mate alignment id"}
	}
	return a.mateID, nil
}

// MateReferenceSpec returns the name of the reference the mate is aligned
// to.
func (a *Alignment) MateReferenceSpec() (string, error) {
	if !a.hasMate {
		return "", &MateError{ID: a.id, Msg: "alignment has no mate"}
	}
	return a.rec.MateRef.Name(), nil
}

// MateIsReversedOrientation reports whether the mate aligned to the reverse
// strand.
func (a *Alignment) MateIsReversedOrientation() (bool, error) {
	if !a.hasMate {
		return false, &MateError{ID: a.id, Msg: "alignment has no mate"}
	}
	return a.rec.Flags&sam.MateReverse != 0, nil
}

// MateAlignment resolves the mate alignment through r.
func (a *Alignment) MateAlignment(r Resolver) (*Alignment, error) {
	if !a.hasMate {
		return nil, &MateError{ID: a.id, Msg: "alignment has no mate"}
	}
	mate, err := r.ResolveMate(a)
	if err != nil {
		return nil, &MateError{ID: a.id, Msg: "mate not resolvable: " + err.Error()}
	}
	return mate, nil
}

// Record returns the shared handle to the backing record. The caller must
// not modify it.
func (a *Alignment) Record() *sam.Record { return a.rec }
