package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// RecordSize is the size of one binary record:
//
//	offset  size  field
//	0       4     kind (uint32 'B', 'S' or 'C')
//	4       4     order id
//	8       4     price
//	12      4     quantity
//	16      9     instrument, NUL terminated
//	25      3     padding
//
// All integers are little endian.
const RecordSize = 28

const instrumentField = domain.MaxInstrumentLen + 1

// BinaryDecoder reads fixed-size binary records.
type BinaryDecoder struct {
	r   io.Reader
	buf [RecordSize]byte
}

// NewBinaryDecoder creates a decoder reading from r.
func NewBinaryDecoder(r io.Reader) *BinaryDecoder {
	return &BinaryDecoder{r: r}
}

// Decode reads the next record.
func (d *BinaryDecoder) Decode() (domain.Request, error) {
	if _, err := io.ReadFull(d.r, d.buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return domain.Request{}, fmt.Errorf("%w: truncated record", domain.ErrMalformedRecord)
		}
		return domain.Request{}, err
	}
	return DecodeRecord(d.buf[:])
}

// DecodeRecord parses a single binary record.
func DecodeRecord(b []byte) (domain.Request, error) {
	if len(b) < RecordSize {
		return domain.Request{}, fmt.Errorf("%w: record is %d bytes, want %d", domain.ErrMalformedRecord, len(b), RecordSize)
	}
	req := domain.Request{
		Kind:     domain.Kind(binary.LittleEndian.Uint32(b[0:4])),
		OrderID:  binary.LittleEndian.Uint32(b[4:8]),
		Price:    binary.LittleEndian.Uint32(b[8:12]),
		Quantity: binary.LittleEndian.Uint32(b[12:16]),
	}
	if req.Kind != domain.KindCancel {
		name := b[16 : 16+instrumentField]
		i := bytes.IndexByte(name, 0)
		if i < 0 {
			return domain.Request{}, fmt.Errorf("%w: instrument is not NUL terminated", domain.ErrMalformedRecord)
		}
		req.Instrument = string(name[:i])
	} else {
		req.Price, req.Quantity = 0, 0
	}
	if err := validate(req); err != nil {
		return domain.Request{}, err
	}
	return req, nil
}

// AppendRecord appends the binary record for req to dst.
func AppendRecord(dst []byte, req domain.Request) ([]byte, error) {
	if err := validate(req); err != nil {
		return dst, err
	}
	var rec [RecordSize]byte
	binary.LittleEndian.PutUint32(rec[0:4], uint32(req.Kind))
	binary.LittleEndian.PutUint32(rec[4:8], req.OrderID)
	binary.LittleEndian.PutUint32(rec[8:12], req.Price)
	binary.LittleEndian.PutUint32(rec[12:16], req.Quantity)
	copy(rec[16:16+domain.MaxInstrumentLen], req.Instrument)
	return append(dst, rec[:]...), nil
}
