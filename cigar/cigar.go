// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package cigar implements the CIGAR alignment description: a run-length
// encoded sequence of operations mapping read bases onto a reference
// subsequence. It provides the textual parser and renderer and the derived
// per-alignment geometry (reference span and edge clip lengths).
package cigar

import (
	"bytes"
	"fmt"
	"strconv"
)

// Op is a single CIGAR operation, packing the operation kind in the low four
// bits and the length in the remaining bits.
type Op uint32

// NewOp returns an operation of the given kind with length n.
//
// REQUIRES: 0 <= n < 1<<28.
func NewOp(k Kind, n int) Op {
	return Op(k) | Op(n)<<4
}

// Kind returns the operation kind.
func (o Op) Kind() Kind { return Kind(o & 0xf) }

// Len returns the operation length.
func (o Op) Len() int { return int(o >> 4) }

// String returns the standard textual form, e.g. "12M".
func (o Op) String() string { return fmt.Sprintf("%d%c", o.Len(), o.Kind().Code()) }

// Kind enumerates the CIGAR operation kinds. The numbering follows the BAM
// encoding order.
type Kind byte

const (
	Match     Kind = iota // M: alignment match (sequence match or mismatch)
	Insertion             // I: insertion to the reference
	Deletion              // D: deletion from the reference
	Skip                  // N: skipped region from the reference
	SoftClip              // S: clipped bases present in the read sequence
	HardClip              // H: clipped bases absent from the read sequence
	Padding               // P: silent deletion from a padded reference
	Equal                 // =: sequence match
	Mismatch              // X: sequence mismatch
	badKind
)

var kindCodes = []byte{'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X', '?'}

// Code returns the single-character op code for the kind.
func (k Kind) Code() byte {
	if k > badKind {
		k = badKind
	}
	return kindCodes[k]
}

func (k Kind) String() string { return string([]byte{k.Code()}) }

// Consume describes how many read and reference bases one unit of an
// operation consumes.
type Consume struct {
	Read, Ref int
}

var consume = []Consume{
	Match:     {Read: 1, Ref: 1},
	Insertion: {Read: 1, Ref: 0},
	Deletion:  {Read: 0, Ref: 1},
	Skip:      {Read: 0, Ref: 1},
	SoftClip:  {Read: 1, Ref: 0},
	HardClip:  {Read: 0, Ref: 0},
	Padding:   {Read: 0, Ref: 0},
	Equal:     {Read: 1, Ref: 1},
	Mismatch:  {Read: 1, Ref: 1},
	badKind:   {},
}

// Consumes returns the per-unit read/reference consumption of the kind.
func (k Kind) Consumes() Consume {
	if k > badKind {
		k = badKind
	}
	return consume[k]
}

// IsClip returns true for the soft and hard clip kinds.
func (k Kind) IsClip() bool { return k == SoftClip || k == HardClip }

// Cigar is an ordered sequence of operations. A parsed Cigar always satisfies
// the structural rules checked by Stats; the zero value describes an
// unavailable alignment ("*").
type Cigar []Op

// MalformedError reports input that cannot be parsed as a CIGAR string. A
// parse that fails never yields a partial Cigar.
type MalformedError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("cigar: malformed string %q at offset %d: %s", e.Input, e.Pos, e.Msg)
}

var kindLookup [256]Kind

func init() {
	for i := range kindLookup {
		kindLookup[i] = badKind
	}
	for k, c := range kindCodes[:badKind] {
		kindLookup[c] = Kind(k)
	}
}

const maxOpLen = 1 << 28

// Parse decodes the standard textual CIGAR encoding: a sequence of
// (unsigned length)(op code) pairs with op codes drawn from {M,I,D,N,S,H,P,=,X}.
// "*" decodes to a nil Cigar. Malformed input fails with *MalformedError.
func Parse(b []byte) (Cigar, error) {
	if len(b) == 1 && b[0] == '*' {
		return nil, nil
	}
	if len(b) == 0 {
		return nil, &MalformedError{Input: "", Pos: 0, Msg: "empty string"}
	}
	var c Cigar
	for i := 0; i < len(b); {
		start := i
		n := 0
		for i < len(b) && '0' <= b[i] && b[i] <= '9' {
			n = n*10 + int(b[i]-'0')
			if n >= maxOpLen {
				return nil, &MalformedError{Input: string(b), Pos: start, Msg: "operation length overflow"}
			}
			i++
		}
		if i == start {
			return nil, &MalformedError{Input: string(b), Pos: i, Msg: "missing operation length"}
		}
		if i == len(b) {
			return nil, &MalformedError{Input: string(b), Pos: i, Msg: "missing operation code"}
		}
		k := kindLookup[b[i]]
		if k == badKind {
			return nil, &MalformedError{Input: string(b), Pos: i, Msg: fmt.Sprintf("unknown operation code %q", b[i])}
		}
		c = append(c, NewOp(k, n))
		i++
	}
	return c, nil
}

// ParseString is Parse on a string.
func ParseString(s string) (Cigar, error) { return Parse([]byte(s)) }

// String returns the canonical textual form, one pair per stored operation.
// An empty Cigar renders as "*".
func (c Cigar) String() string {
	if len(c) == 0 {
		return "*"
	}
	var b bytes.Buffer
	for _, op := range c {
		b.WriteString(op.String())
	}
	return b.String()
}

// Short renders the sequence in short form: adjacent operations of the same
// kind are merged into a single run. With clipped=true, soft and hard clip
// operations are omitted; their lengths are reported separately by Stats.
// Re-parsing the result yields a sequence equal to c modulo run merging and
// the clip omission policy.
func (c Cigar) Short(clipped bool) string {
	var b []byte
	i := 0
	for i < len(c) {
		k := c[i].Kind()
		n := c[i].Len()
		for i+1 < len(c) && c[i+1].Kind() == k {
			i++
			n += c[i].Len()
		}
		i++
		if n == 0 || (clipped && k.IsClip()) {
			continue
		}
		b = strconv.AppendInt(b, int64(n), 10)
		b = append(b, k.Code())
	}
	return string(b)
}

// Long renders the sequence in long form: one length-1 pair per consumed
// unit, so re-parsing reproduces the per-unit operation sequence exactly.
// With clipped=true, soft and hard clip operations are omitted.
func (c Cigar) Long(clipped bool) string {
	var b []byte
	for _, op := range c {
		k := op.Kind()
		if clipped && k.IsClip() {
			continue
		}
		for j := 0; j < op.Len(); j++ {
			b = append(b, '1', k.Code())
		}
	}
	return string(b)
}

// Lengths returns the number of reference and read bases the sequence
// consumes. Soft-clipped bases count toward the read length.
func (c Cigar) Lengths() (ref, read int) {
	for _, op := range c {
		con := op.Kind().Consumes()
		ref += op.Len() * con.Ref
		read += op.Len() * con.Read
	}
	return ref, read
}
