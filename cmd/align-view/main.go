// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// align-view prints the accessor surface of one alignment in a SAM/BAM
// collection, and optionally the read projection of reference positions.
//
// Usage:
//   align-view [-project pos,pos,...] [-mate] path id
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/align/alignment"
	"github.com/grailbio/align/provider"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
)

var (
	projectFlag = flag.String("project", "", "Comma-separated 0-based reference positions to project onto the read")
	mateFlag    = flag.Bool("mate", false, "Also print the resolved mate alignment")
	typeFlag    = flag.String("type", "", "Input file type (sam or bam); guessed from the path when empty")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] path id\n", os.Args[0])
	flag.PrintDefaults()
}

func printAlignment(a *alignment.Alignment) {
	str := func(v string, err error) string {
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return v
	}
	id, _ := a.ID()
	fmt.Printf("alignment %s:\n", id)
	fmt.Printf("  reference:   %s\n", str(a.ReferenceSpec()))
	if pos, err := a.Position(); err == nil {
		fmt.Printf("  position:    %d\n", pos)
	}
	if n, err := a.Length(); err == nil {
		fmt.Printf("  length:      %d\n", n)
	}
	if q, err := a.MappingQuality(); err == nil {
		fmt.Printf("  mapq:        %d\n", q)
	}
	fmt.Printf("  category:    %s\n", a.Category())
	fmt.Printf("  reversed:    %v\n", a.IsReversedOrientation())
	fmt.Printf("  rna strand:  %c\n", a.RNAOrientation())
	if c, err := a.ShortCigar(false); err == nil {
		fmt.Printf("  cigar:       %s\n", c)
	}
	left, lerr := a.SoftClip(alignment.ClipLeft)
	right, rerr := a.SoftClip(alignment.ClipRight)
	if lerr == nil && rerr == nil {
		fmt.Printf("  soft clips:  %d left, %d right\n", left, right)
	}
	if v, err := a.ClippedBases(); err == nil {
		fmt.Printf("  bases:       %s\n", v.String())
	}
	if v, err := a.ClippedQualities(); err == nil {
		fmt.Printf("  qualities:   %s\n", v.String())
	}
	fmt.Printf("  read id:     %s\n", str(a.ReadID()))
	if rg, err := a.ReadGroup(); err == nil {
		fmt.Printf("  read group:  %s\n", rg)
	}
	fmt.Printf("  has mate:    %v\n", a.HasMate())
	if a.HasMate() {
		fmt.Printf("  mate ref:    %s\n", str(a.MateReferenceSpec()))
		if rev, err := a.MateIsReversedOrientation(); err == nil {
			fmt.Printf("  mate rev:    %v\n", rev)
		}
	}
}

func main() {
	shutdown := grail.Init()
	defer shutdown()
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	path, id := flag.Arg(0), flag.Arg(1)

	var opts provider.Opts
	if *typeFlag != "" {
		opts.Type = provider.ParseFileType(*typeFlag)
		if opts.Type == provider.Unknown {
			log.Fatalf("unknown file type %q", *typeFlag)
		}
	}
	p := provider.NewProvider(path, opts)
	defer p.Close() // nolint: errcheck

	a, err := p.Lookup(id)
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	printAlignment(a)

	if *projectFlag != "" {
		for _, s := range strings.Split(*projectFlag, ",") {
			refPos, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				log.Fatalf("bad position %q: %v", s, err)
			}
			proj, err := a.Project(refPos)
			if err != nil {
				fmt.Printf("  project %d:  %v\n", refPos, err)
				continue
			}
			fmt.Printf("  project %d:  read offset %d, length %d\n", refPos, proj.Start, proj.Len)
		}
	}

	if *mateFlag && a.HasMate() {
		mate, err := a.MateAlignment(p)
		if err != nil {
			log.Fatalf("resolve mate: %v", err)
		}
		printAlignment(mate)
	}
}
