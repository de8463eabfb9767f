package provider_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/align/alignment"
	"github.com/grailbio/align/provider"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeader(t *testing.T) (*sam.Header, *sam.Reference, *sam.Reference) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 2000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	return header, chr1, chr2
}

func newRec(t *testing.T, name string, ref *sam.Reference, pos int, cig string, flags sam.Flags, bases string) *sam.Record {
	co, err := sam.ParseCigar([]byte(cig))
	require.NoError(t, err)
	return &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MapQ:    60,
		Cigar:   co,
		Flags:   flags,
		Seq:     sam.NewSeq([]byte(bases)),
		MatePos: -1,
	}
}

func TestLookup(t *testing.T) {
	header, chr1, _ := newHeader(t)
	p := provider.NewFakeProvider(header, []*sam.Record{
		newRec(t, "a", chr1, 10, "4M", 0, "ACGT"),
		newRec(t, "b", chr1, 20, "2M2I", 0, "ACGT"),
	})
	defer p.Close() // nolint: errcheck

	n, err := p.NumAlignments()
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	a, err := p.Lookup("1")
	assert.NoError(t, err)
	id, err := a.ID()
	assert.NoError(t, err)
	assert.Equal(t, "1", id)
	readID, err := a.ReadID()
	assert.NoError(t, err)
	assert.Equal(t, "a", readID)

	_, err = p.Lookup("3")
	assert.Error(t, err)
	assert.True(t, errors.Is(errors.NotExist, err), "got %v", err)
}

func TestResolveMate(t *testing.T) {
	header, chr1, chr2 := newHeader(t)
	r1 := newRec(t, "pair", chr1, 10, "4M", sam.Paired|sam.Read1, "ACGT")
	r1.MateRef = chr2
	r1.MatePos = 500
	r2 := newRec(t, "pair", chr2, 500, "4M", sam.Paired|sam.Read2, "ACGT")
	r2.MateRef = chr1
	r2.MatePos = 10
	solo := newRec(t, "solo", chr1, 30, "4M", 0, "ACGT")

	p := provider.NewFakeProvider(header, []*sam.Record{r1, solo, r2})
	defer p.Close() // nolint: errcheck

	a, err := p.Lookup("1")
	assert.NoError(t, err)
	assert.True(t, a.HasMate())
	mateID, err := a.MateAlignmentID()
	assert.NoError(t, err)
	assert.Equal(t, "3", mateID)

	mate, err := p.ResolveMate(a)
	assert.NoError(t, err)
	mID, err := mate.ID()
	assert.NoError(t, err)
	assert.Equal(t, "3", mID)

	// Resolution is symmetric.
	back, err := p.ResolveMate(mate)
	assert.NoError(t, err)
	assert.Equal(t, a, back)

	// MateAlignment delegates through the provider as Resolver.
	viaAccessor, err := a.MateAlignment(p)
	assert.NoError(t, err)
	assert.Equal(t, mate, viaAccessor)

	s, err := p.Lookup("2")
	assert.NoError(t, err)
	assert.False(t, s.HasMate())
	_, err = p.ResolveMate(s)
	assert.Error(t, err)
	assert.True(t, errors.Is(errors.NotExist, err), "got %v", err)
}

func TestResolveMateMissingRecord(t *testing.T) {
	header, chr1, chr2 := newHeader(t)
	// Paired record whose mate record is absent from the collection.
	r1 := newRec(t, "lonely", chr1, 10, "4M", sam.Paired|sam.Read1, "ACGT")
	r1.MateRef = chr2
	r1.MatePos = 500

	p := provider.NewFakeProvider(header, []*sam.Record{r1})
	a, err := p.Lookup("1")
	assert.NoError(t, err)
	assert.True(t, a.HasMate())

	_, err = p.ResolveMate(a)
	assert.Error(t, err)
	assert.True(t, errors.Is(errors.NotExist, err), "got %v", err)

	_, err = a.MateAlignment(p)
	assert.Error(t, err)
	_, ok := err.(*alignment.MateError)
	assert.True(t, ok, "got %T (%v)", err, err)
}

const testSAM = `@HD	VN:1.6	SO:coordinate
@SQ	SN:chr1	LN:1000
@SQ	SN:chr2	LN:2000
r1	99	chr1	101	60	2M3I2M	=	181	87	ACGTACG	IIIIIII
r2	0	chr1	151	60	3M2D3M	*	0	0	ACGTAC	IIIIII
r1	147	chr1	181	60	7M	=	101	-87	ACGTACG	IIIIIII
`

func TestSAMProvider(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tempDir, "test.sam")
	require.NoError(t, ioutil.WriteFile(path, []byte(testSAM), 0644))

	p := provider.NewProvider(path)
	defer p.Close() // nolint: errcheck

	header, err := p.Header()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(header.Refs()))

	n, err := p.NumAlignments()
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	a, err := p.Lookup("1")
	assert.NoError(t, err)
	pos, err := a.Position()
	assert.NoError(t, err)
	assert.Equal(t, int64(100), pos) // SAM text is 1-based

	proj, err := a.Project(102)
	assert.NoError(t, err)
	assert.Equal(t, alignment.Projection{Start: 2, Len: 3}, proj)

	mate, err := p.ResolveMate(a)
	assert.NoError(t, err)
	mateID, err := mate.ID()
	assert.NoError(t, err)
	assert.Equal(t, "3", mateID)

	b, err := p.Lookup("2")
	assert.NoError(t, err)
	assert.False(t, b.HasMate())
	length, err := b.Length()
	assert.NoError(t, err)
	assert.Equal(t, uint64(8), length)
}

func TestProviderBadPath(t *testing.T) {
	p := provider.NewProvider("/nonexistent/reads.sam")
	_, err := p.Header()
	assert.Error(t, err)
	// The load failure is sticky.
	_, err = p.Lookup("1")
	assert.Error(t, err)
}

func TestFileType(t *testing.T) {
	assert.Equal(t, provider.SAM, provider.GuessFileType("reads.sam"))
	assert.Equal(t, provider.BAM, provider.GuessFileType("reads.bam"))
	assert.Equal(t, provider.Unknown, provider.GuessFileType("reads.cram"))
	assert.Equal(t, provider.SAM, provider.ParseFileType("sam"))
	assert.Equal(t, provider.BAM, provider.ParseFileType("bam"))
	assert.Equal(t, provider.Unknown, provider.ParseFileType("pam"))
}
