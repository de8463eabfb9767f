// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package seq provides immutable byte-range views over base and quality
// strings. A View either borrows a sub-range of a caller-owned buffer or owns
// a private copy; in both cases the bytes are never mutated through the View.
package seq

// View is an immutable window onto a contiguous base or quality buffer.
// Clipped and unclipped variants of the same underlying record are distinct
// View values, not flags on one object.
type View struct {
	b []byte
}

// NewView returns a View borrowing b. The caller must not modify b for the
// lifetime of the View.
func NewView(b []byte) View {
	return View{b: b}
}

// Len returns the number of bytes in the view.
func (v View) Len() int { return len(v.b) }

// String returns the view contents as a string.
func (v View) String() string { return string(v.b) }

// Bytes returns a fresh copy of the view contents.
func (v View) Bytes() []byte {
	out := make([]byte, len(v.b))
	copy(out, v.b)
	return out
}

// At returns the byte at offset i.
func (v View) At(i int) byte { return v.b[i] }

// Slice returns the sub-view [i, j).
func (v View) Slice(i, j int) View {
	return View{b: v.b[i:j]}
}

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	for _, p := range [][2]byte{
		{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'}, {'U', 'A'},
		{'R', 'Y'}, {'Y', 'R'}, {'S', 'S'}, {'W', 'W'},
		{'K', 'M'}, {'M', 'K'}, {'B', 'V'}, {'V', 'B'},
		{'D', 'H'}, {'H', 'D'}, {'N', 'N'},
	} {
		complement[p[0]] = p[1]
		complement[p[0]+'a'-'A'] = p[1] + 'a' - 'A'
	}
}

// ReverseComplement returns a new owned View holding the reverse complement
// of v, using the IUPAC ambiguity alphabet. Bytes outside the alphabet map to
// 'N'.
func ReverseComplement(v View) View {
	n := len(v.b)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complement[v.b[n-1-i]]
	}
	return View{b: out}
}

// Reverse returns a new owned View holding the bytes of v in reverse order.
// Used for quality strings, which reverse without complementing.
func Reverse(v View) View {
	n := len(v.b)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = v.b[n-1-i]
	}
	return View{b: out}
}
