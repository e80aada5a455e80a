// Package identity provides a fixed-size, serialisable identifier used to give
// queues, sources and targets a stable identity across persistence boundaries.
//
// An ID is a plain 16-byte value. Equality is byte-level, so two IDs decoded
// from the same bytes compare equal regardless of how they were produced.
package identity

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Size is the length of an encoded ID in bytes.
const Size = 16

// ErrInvalidLength indicates a payload that does not hold exactly Size bytes.
var ErrInvalidLength = errors.New("identity: payload must be 16 bytes")

// ID is a 16-byte identifier. The zero value is "not generated".
type ID [Size]byte

// Nil is the zero ID.
var Nil ID

// New returns a freshly generated random ID.
func New() ID {
	return ID(uuid.New())
}

// FromUUID converts a uuid.UUID into an ID.
func FromUUID(id uuid.UUID) ID {
	return ID(id)
}

// FromBytes copies b into an ID. b must hold exactly Size bytes.
func FromBytes(b []byte) (ID, error) {
	if len(b) != Size {
		return Nil, fmt.Errorf("%w: got %d", ErrInvalidLength, len(b))
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// Parse decodes the canonical textual form (any form uuid.Parse accepts).
func Parse(s string) (ID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("identity: parse %q: %w", s, err)
	}
	return ID(parsed), nil
}

// Generate fills id with a random value when it has not been generated yet.
// When force is true a new value is always assigned.
func (id *ID) Generate(force bool) {
	if id == nil {
		return
	}
	if id.IsZero() || force {
		*id = New()
	}
}

// IsZero reports whether id was never generated.
func (id ID) IsZero() bool {
	return id == Nil
}

// Equal compares two IDs byte by byte.
func (id ID) Equal(other ID) bool {
	return bytes.Equal(id[:], other[:])
}

// EqualUUID compares id against a uuid.UUID byte by byte.
func (id ID) EqualUUID(other uuid.UUID) bool {
	return bytes.Equal(id[:], other[:])
}

// UUID returns id as a uuid.UUID.
func (id ID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

// Bytes returns a copy of the raw bytes.
func (id ID) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, id[:])
	return out
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// WriteTo writes the 16 raw bytes to w.
func (id ID) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(id[:])
	return int64(n), err
}

// ReadFrom reads exactly 16 raw bytes from r into id.
func (id *ID) ReadFrom(r io.Reader) (int64, error) {
	var buf [Size]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return int64(n), fmt.Errorf("%w: got %d", ErrInvalidLength, n)
		}
		return int64(n), err
	}
	*id = ID(buf)
	return int64(n), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (id ID) MarshalBinary() ([]byte, error) {
	return id.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (id *ID) UnmarshalBinary(data []byte) error {
	parsed, err := FromBytes(data)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
