package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// TextDecoder reads one command per line:
//
//	B <order id> <instrument> <price> <quantity>
//	S <order id> <instrument> <price> <quantity>
//	C <order id>
//
// Blank lines and lines starting with '#' are skipped.
type TextDecoder struct {
	sc   *bufio.Scanner
	line int
}

// NewTextDecoder creates a decoder reading from r.
func NewTextDecoder(r io.Reader) *TextDecoder {
	return &TextDecoder{sc: bufio.NewScanner(r)}
}

// Decode reads the next command.
func (d *TextDecoder) Decode() (domain.Request, error) {
	for d.sc.Scan() {
		d.line++
		line := strings.TrimSpace(d.sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		req, err := ParseLine(line)
		if err != nil {
			return domain.Request{}, fmt.Errorf("line %d: %w", d.line, err)
		}
		return req, nil
	}
	if err := d.sc.Err(); err != nil {
		return domain.Request{}, err
	}
	return domain.Request{}, io.EOF
}

// ParseLine parses a single non-empty command line.
func ParseLine(line string) (domain.Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields[0]) != 1 {
		return domain.Request{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, line)
	}

	req := domain.Request{Kind: domain.Kind(fields[0][0])}
	switch req.Kind {
	case domain.KindCancel:
		if len(fields) != 2 {
			return domain.Request{}, fmt.Errorf("%w: cancel takes 1 argument, got %d", domain.ErrMalformedRecord, len(fields)-1)
		}
	case domain.KindBuy, domain.KindSell:
		if len(fields) != 5 {
			return domain.Request{}, fmt.Errorf("%w: order takes 4 arguments, got %d", domain.ErrMalformedRecord, len(fields)-1)
		}
	default:
		return domain.Request{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, fields[0])
	}

	var err error
	if req.OrderID, err = parseUint32("order id", fields[1]); err != nil {
		return domain.Request{}, err
	}
	if req.Kind != domain.KindCancel {
		req.Instrument = fields[2]
		if req.Price, err = parseUint32("price", fields[3]); err != nil {
			return domain.Request{}, err
		}
		if req.Quantity, err = parseUint32("quantity", fields[4]); err != nil {
			return domain.Request{}, err
		}
	}
	if err := validate(req); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}

// FormatLine renders req in the text command form without a trailing
// newline.
func FormatLine(req domain.Request) string {
	if req.Kind == domain.KindCancel {
		return fmt.Sprintf("C %d", req.OrderID)
	}
	return fmt.Sprintf("%s %d %s %d %d", req.Kind, req.OrderID, req.Instrument, req.Price, req.Quantity)
}

func parseUint32(field, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrMalformedRecord, field, s)
	}
	return uint32(v), nil
}
