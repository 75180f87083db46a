// Package wire decodes the inbound request records read from a client
// stream.
package wire

import (
	"fmt"
	"io"
	"strings"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// Format names an inbound record encoding.
type Format string

const (
	FormatBinary Format = "binary"
	FormatText   Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatBinary, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
}

// Decoder reads one request at a time from a stream. Decode returns io.EOF
// when the stream ends cleanly between records; any other error means the
// stream is unusable.
type Decoder interface {
	Decode() (domain.Request, error)
}

// NewDecoder returns the decoder for format reading from r.
func NewDecoder(format Format, r io.Reader) (Decoder, error) {
	switch format {
	case FormatBinary:
		return NewBinaryDecoder(r), nil
	case FormatText:
		return NewTextDecoder(r), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}

// validate checks the fields a well-formed request must carry.
func validate(req domain.Request) error {
	if !req.Kind.Valid() {
		return fmt.Errorf("%w: kind %d", domain.ErrUnknownKind, req.Kind)
	}
	if req.Kind == domain.KindCancel {
		return nil
	}
	return domain.ValidateInstrument(req.Instrument)
}
