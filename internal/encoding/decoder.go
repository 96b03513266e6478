package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a record ends in the middle of a field.
var ErrTruncated = errors.New("encoding: truncated record")

// Decoder reads fields written by Encoder. The first error is sticky: once
// a read fails every later read returns zero values and Err reports it.
type Decoder struct {
	buf []byte
	err error
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{buf: data}
}

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf)
	if n <= 0 {
		d.fail(ErrTruncated)
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *Decoder) take(n uint64) []byte {
	if d.err != nil {
		return nil
	}
	if uint64(len(d.buf)) < n {
		d.fail(fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, len(d.buf)))
		return nil
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b
}

func (d *Decoder) ReadString() string {
	n := d.uvarint()
	return string(d.take(n))
}

func (d *Decoder) ReadStrings() []string {
	n := d.uvarint()
	if d.err != nil || n == 0 {
		return nil
	}
	if n > uint64(len(d.buf)) {
		d.fail(fmt.Errorf("%w: %d strings in %d bytes", ErrTruncated, n, len(d.buf)))
		return nil
	}
	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, d.ReadString())
	}
	return out
}

func (d *Decoder) ReadBool() bool {
	b := d.take(1)
	return len(b) == 1 && b[0] != 0
}

func (d *Decoder) ReadInt64() int64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// Err returns the first decoding error, or an error if unread bytes remain.
func (d *Decoder) Err() error {
	if d.err != nil {
		return d.err
	}
	if len(d.buf) > 0 {
		return fmt.Errorf("encoding: %d trailing bytes", len(d.buf))
	}
	return nil
}
