package rhd

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedSymbol matches any *UnsupportedSymbolError.
	ErrUnsupportedSymbol = errors.New("unsupported symbol")

	// ErrMalformedInput matches any *MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInnerMismatch matches any *InnerMismatchError.
	ErrInnerMismatch = errors.New("content does not decode under this passphrase")

	// ErrInvalidPassphrase is returned when the passphrase is empty or holds
	// runes outside the alphabet.
	ErrInvalidPassphrase = errors.New("invalid passphrase")
)

// UnsupportedSymbolError reports a rune outside the alphabet under PolicyStrict.
type UnsupportedSymbolError struct {
	// Position is the rune index (not byte offset) of the offending symbol.
	Position int

	// Symbol is the rune that could not be mapped.
	Symbol rune
}

func (e *UnsupportedSymbolError) Error() string {
	return fmt.Sprintf("unsupported symbol %q (U+%04X) at position %d", e.Symbol, e.Symbol, e.Position)
}

// Is makes errors.Is(err, ErrUnsupportedSymbol) hold for wrapped values.
func (e *UnsupportedSymbolError) Is(target error) bool {
	return target == ErrUnsupportedSymbol
}

// Stage names a step of the decode pipeline.
type Stage string

const (
	StageSubstituteB Stage = "substitute-b"
	StageOuterRadix  Stage = "outer-radix64"
	StageSubstituteA Stage = "substitute-a"
	StageInnerRadix  Stage = "inner-radix64"
)

// MalformedInputError reports content that is not valid output of the two
// outer encode stages. Only StageSubstituteB and StageOuterRadix produce it.
type MalformedInputError struct {
	Stage  Stage
	Offset int
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input at %s (offset %d): %v", e.Stage, e.Offset, e.Err)
	}
	return fmt.Sprintf("malformed input at %s (offset %d)", e.Stage, e.Offset)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedInput) hold for wrapped values.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// InnerMismatchError reports content that is structurally valid encoder
// output but falls apart once the shift is undone with the given key. It is
// the usual result of decoding with the wrong passphrase.
type InnerMismatchError struct {
	Stage  Stage
	Offset int
	Err    error
}

func (e *InnerMismatchError) Error() string {
	return fmt.Sprintf("%v: %s failed at offset %d", ErrInnerMismatch, e.Stage, e.Offset)
}

func (e *InnerMismatchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInnerMismatch) hold for wrapped values.
func (e *InnerMismatchError) Is(target error) bool {
	return target == ErrInnerMismatch
}
