package ident

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// Id is an opaque 128-bit identifier minted once per block or resource.
type Id [16]byte

// Nil is the zero identifier. It is never returned by New.
var Nil Id

// New mints a fresh random identifier.
func New() Id {
	return Id(uuid.New())
}

// Parse reads the wire form produced by String.
func Parse(s string) (Id, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("parsing id %q: %w", s, err)
	}
	return Id(u), nil
}

// FromBytes reads the raw 16 byte form produced by Bytes.
func FromBytes(b []byte) (Id, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return Nil, fmt.Errorf("reading id bytes: %w", err)
	}
	return Id(u), nil
}

func (id Id) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns a copy of the raw 16 bytes.
func (id Id) Bytes() []byte {
	b := make([]byte, len(id))
	copy(b, id[:])
	return b
}

func (id Id) IsNil() bool {
	return id == Nil
}

// Compare orders ids by their raw bytes.
func (id Id) Compare(other Id) int {
	return bytes.Compare(id[:], other[:])
}

func (id Id) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Id) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
