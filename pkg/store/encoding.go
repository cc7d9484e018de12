package store

import (
	"encoding/binary"
	"math"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

// EncodeInt64BigEndian encodes a signed 64-bit integer as 8 big-endian bytes
// so the lexicographic byte order of keys matches numeric order for
// non-negative values (sign bit flipped so negatives sort before positives).
func EncodeInt64BigEndian(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)^(1<<63))
	return buf
}

// DecodeInt64BigEndian is the inverse of EncodeInt64BigEndian.
func DecodeInt64BigEndian(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf) ^ (1 << 63))
}

// EncodeFloat64BigEndian encodes a float64 as 8 big-endian bytes, ordered so
// lexicographic byte order matches IEEE-754 total order.
func EncodeFloat64BigEndian(v float64) []byte {
	bits := math.Float64bits(v)
	if v >= 0 {
		bits |= 1 << 63
	} else {
		bits = ^bits
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf
}

// DecodeFloat64BigEndian is the inverse of EncodeFloat64BigEndian.
func DecodeFloat64BigEndian(buf []byte) float64 {
	bits := binary.BigEndian.Uint64(buf)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits)
}

// EncodedTerm represents a term encoded as a type byte followed by up to 16 bytes of data
// This is defined here to be used by both the encoder and decoder interfaces
type EncodedTerm [17]byte

// TermEncoder handles encoding of RDF terms into a compact binary format
type TermEncoder interface {
	// EncodeTerm encodes an RDF term into a fixed-size byte array
	// Returns the encoded term and optionally a string to store in id2str table
	EncodeTerm(term rdf.Term) (EncodedTerm, *string, error)

	// EncodeQuadKey encodes a quad key for one of the indexes
	// Returns a big-endian byte array for lexicographic sorting
	EncodeQuadKey(terms ...EncodedTerm) []byte
}

// TermDecoder handles decoding of RDF terms from binary format
type TermDecoder interface {
	// DecodeTerm decodes an encoded term back to an rdf.Term
	// For terms that require string lookup, stringValue should be provided
	DecodeTerm(encoded EncodedTerm, stringValue *string) (rdf.Term, error)
}
