package loadgen

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/wire"
)

func TestGenerate_Shape(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	r := Range{Begin: 100, End: 600}

	reqs := Generate(rng, r)

	require.Len(t, reqs, 500)
	counts := map[domain.Kind]int{}
	for i, req := range reqs {
		id := r.Begin + uint32(i)
		counts[req.Kind]++
		if req.Kind == domain.KindCancel {
			assert.GreaterOrEqual(t, req.OrderID, r.Begin)
			assert.LessOrEqual(t, req.OrderID, id)
			continue
		}
		assert.Equal(t, id, req.OrderID)
		assert.Contains(t, Instruments, req.Instrument)
		assert.Equal(t, uint32(1), req.Price)
		assert.Equal(t, uint32(1), req.Quantity)
	}
	for _, k := range []domain.Kind{domain.KindBuy, domain.KindSell, domain.KindCancel} {
		assert.Positive(t, counts[k], "kind %s never generated", k)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(rand.New(rand.NewPCG(7, 7)), Range{Begin: 1, End: 50})
	b := Generate(rand.New(rand.NewPCG(7, 7)), Range{Begin: 1, End: 50})
	assert.Equal(t, a, b)
}

func TestGenerate_EmptyOrInvertedRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	assert.Empty(t, Generate(rng, Range{Begin: 10, End: 10}))
	assert.Empty(t, Generate(rng, Range{Begin: 10, End: 5}))
}

func TestProperty_SplitCoversRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		begin := rapid.Uint32Range(0, 1000).Draw(t, "begin")
		size := rapid.Uint32Range(0, 1000).Draw(t, "size")
		n := rapid.IntRange(1, 32).Draw(t, "n")
		r := Range{Begin: begin, End: begin + size}

		parts := Split(r, n)

		if len(parts) > n {
			t.Fatalf("%d parts for n=%d", len(parts), n)
		}
		next := r.Begin
		for _, p := range parts {
			if p.Begin != next || p.End <= p.Begin {
				t.Fatalf("part %+v does not continue at %d", p, next)
			}
			next = p.End
		}
		if next != r.End && !(size == 0 && len(parts) == 0) {
			t.Fatalf("parts end at %d, want %d", next, r.End)
		}
	})
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("10:20")
	require.NoError(t, err)
	assert.Equal(t, Range{Begin: 10, End: 20}, r)

	for _, s := range []string{"", "10", "10:", "20:10", "5:5", "a:b"} {
		_, err := ParseRange(s)
		assert.Error(t, err, "ParseRange(%q)", s)
	}
}

func TestWrite_BinaryDecodesBack(t *testing.T) {
	reqs := Generate(rand.New(rand.NewPCG(3, 4)), Range{Begin: 1, End: 40})
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, wire.FormatBinary, reqs))

	assert.Equal(t, len(reqs)*wire.RecordSize, buf.Len())
	dec := wire.NewBinaryDecoder(&buf)
	for i, want := range reqs {
		got, err := dec.Decode()
		require.NoError(t, err, "record %d", i)
		assert.Equal(t, want, got)
	}
}

func TestPipe_TextToBinary(t *testing.T) {
	script := "# warm up\nB 1 AAPL 100 10\n\nS 2 AAPL 99 4\nC 1\n"
	var out bytes.Buffer

	n, err := Pipe(wire.NewTextDecoder(strings.NewReader(script)), &out, wire.FormatBinary)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	dec := wire.NewBinaryDecoder(&out)
	first, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, domain.Request{Kind: domain.KindBuy, OrderID: 1, Instrument: "AAPL", Price: 100, Quantity: 10}, first)
}

func TestPipe_TextToText(t *testing.T) {
	var out bytes.Buffer

	n, err := Pipe(wire.NewTextDecoder(strings.NewReader("S 5 MSFT 7 3\nC 5\n")), &out, wire.FormatText)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "S 5 MSFT 7 3\nC 5\n", out.String())
}

func TestPipe_StopsOnMalformedLine(t *testing.T) {
	var out bytes.Buffer

	n, err := Pipe(wire.NewTextDecoder(strings.NewReader("B 1 AAPL 1 1\nX nope\n")), &out, wire.FormatBinary)

	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, wire.RecordSize, out.Len())
}
