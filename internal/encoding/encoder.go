// Package encoding serializes catalog records as length-prefixed binary
// fields and computes 128-bit xxh3 fingerprints.
package encoding

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// FingerprintSize is the size of a fingerprint in bytes.
const FingerprintSize = 16

// Hash128 computes a 128-bit xxhash3 hash of the input string
func Hash128(s string) [FingerprintSize]byte {
	hash := xxh3.HashString128(s)
	var result [FingerprintSize]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// Fingerprint hashes a sequence of fields. Fields are length-prefixed, so
// ("ab", "c") and ("a", "bc") differ.
func Fingerprint(fields ...string) [FingerprintSize]byte {
	e := NewEncoder()
	for _, f := range fields {
		e.PutString(f)
	}
	return Hash128(string(e.Bytes()))
}

// Encoder appends fields to a record. Decoder reads them back in the same
// order.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// PutString appends a uvarint length followed by the bytes of s.
func (e *Encoder) PutString(s string) {
	e.buf = binary.AppendUvarint(e.buf, uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// PutStrings appends a count followed by each string.
func (e *Encoder) PutStrings(ss []string) {
	e.buf = binary.AppendUvarint(e.buf, uint64(len(ss)))
	for _, s := range ss {
		e.PutString(s)
	}
}

func (e *Encoder) PutBool(b bool) {
	if b {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// PutInt64 appends v as 8 big-endian bytes.
func (e *Encoder) PutInt64(v int64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(v))
}

// Bytes returns the encoded record.
func (e *Encoder) Bytes() []byte {
	return e.buf
}
