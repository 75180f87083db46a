// Package loadgen produces request streams for exercising a running
// engine: random command mixes and re-encoded text scripts.
package loadgen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/wire"
)

// Instruments are the symbols random commands are spread over.
var Instruments = []string{"AAAA", "BBBB", "CCCC", "DDDD"}

// Range is a half-open interval of order ids.
type Range struct {
	Begin uint32
	End   uint32
}

// Generate returns one command per id in r. Each is a buy, a sell or a
// cancel with equal odds; orders have price and quantity 1 on a random
// instrument, and a cancel targets a random id in [r.Begin, id]. The id
// of a cancel is consumed without being submitted, so some cancels name
// ids that were never used. An empty or inverted range yields nothing.
func Generate(rng *rand.Rand, r Range) []domain.Request {
	if r.End <= r.Begin {
		return nil
	}
	reqs := make([]domain.Request, 0, r.End-r.Begin)
	kinds := []domain.Kind{domain.KindSell, domain.KindBuy, domain.KindCancel}
	for id := r.Begin; id < r.End; id++ {
		kind := kinds[rng.IntN(len(kinds))]
		if kind == domain.KindCancel {
			target := r.Begin + uint32(rng.IntN(int(id-r.Begin)+1))
			reqs = append(reqs, domain.Request{Kind: domain.KindCancel, OrderID: target})
			continue
		}
		reqs = append(reqs, domain.Request{
			Kind:       kind,
			OrderID:    id,
			Instrument: Instruments[rng.IntN(len(Instruments))],
			Price:      1,
			Quantity:   1,
		})
	}
	return reqs
}

// Split divides r into n contiguous ranges of near-equal size so that
// concurrent connections never submit the same id. Empty ranges are
// omitted.
func Split(r Range, n int) []Range {
	if n <= 0 || r.End <= r.Begin {
		return nil
	}
	total := r.End - r.Begin
	out := make([]Range, 0, n)
	begin := r.Begin
	for i := 0; i < n; i++ {
		size := total / uint32(n)
		if uint32(i) < total%uint32(n) {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, Range{Begin: begin, End: begin + size})
		begin += size
	}
	return out
}

// Write encodes reqs onto w in format.
func Write(w io.Writer, format wire.Format, reqs []domain.Request) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, req := range reqs {
		var err error
		if buf, err = encode(buf[:0], format, req); err != nil {
			return err
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Pipe re-encodes every request read from dec onto w in format and
// returns the number of requests written. Each request is flushed as soon
// as it is read so interactive input reaches the engine immediately.
func Pipe(dec wire.Decoder, w io.Writer, format wire.Format) (int, error) {
	var (
		n   int
		buf []byte
	)
	for {
		req, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if buf, err = encode(buf[:0], format, req); err != nil {
			return n, err
		}
		if _, err := w.Write(buf); err != nil {
			return n, err
		}
		n++
	}
}

// ParseRange parses "begin:end".
func ParseRange(s string) (Range, error) {
	var r Range
	if _, err := fmt.Sscanf(s, "%d:%d", &r.Begin, &r.End); err != nil {
		return Range{}, fmt.Errorf("range %q must be begin:end: %w", s, err)
	}
	if r.End <= r.Begin {
		return Range{}, fmt.Errorf("range %q is empty", s)
	}
	return r, nil
}

func encode(dst []byte, format wire.Format, req domain.Request) ([]byte, error) {
	if format == wire.FormatText {
		return append(append(dst, wire.FormatLine(req)...), '\n'), nil
	}
	return wire.AppendRecord(dst, req)
}
