package rhd

import (
	"encoding/base64"
	"errors"
)

// radix64 is the standard encoding with '=' padding. Strict decoding rejects
// non-zero trailing bits so corrupted padding is not silently accepted.
var radix64 = base64.StdEncoding.Strict()

// Codec binds a passphrase and policy for repeated calls. A Codec is
// immutable and safe for concurrent use.
type Codec struct {
	key    []byte
	policy Policy
}

// NewCodec validates the passphrase and returns a Codec.
func NewCodec(passphrase string, policy Policy) (*Codec, error) {
	key, err := passphraseKey(passphrase)
	if err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicyStrict
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	return &Codec{key: key, policy: policy}, nil
}

// Policy returns the out-of-alphabet policy used by Encode.
func (c *Codec) Policy() Policy {
	return c.policy
}

// Encode maps text onto the alphabet with the codec's policy and runs the
// forward transform.
func (c *Codec) Encode(content string) (string, error) {
	data, err := ToAlphabet(content, c.policy)
	if err != nil {
		return "", err
	}
	return string(c.EncodeBytes(data)), nil
}

// Decode runs the backward transform and maps the result back to text.
func (c *Codec) Decode(content string) (string, error) {
	data, err := c.DecodeBytes([]byte(content))
	if err != nil {
		return "", err
	}
	return FromAlphabet(data), nil
}

// EncodeBytes runs the five forward stages over alphabet bytes.
// The result is printable ASCII.
func (c *Codec) EncodeBytes(data []byte) []byte {
	out := radix64Encode(data)
	out = substituteA.apply(out)
	out = shift(out, c.key, +1)
	out = radix64Encode(out)
	return substituteB.apply(out)
}

// DecodeBytes runs the backward stages. It fails with *MalformedInputError
// when data is not something the outer encode stages can produce, and with
// *InnerMismatchError when the outer stages decode but the inner ones do not
// under this codec's key.
func (c *Codec) DecodeBytes(data []byte) ([]byte, error) {
	out, bad := substituteB.revert(data)
	if bad >= 0 {
		return nil, &MalformedInputError{Stage: StageSubstituteB, Offset: bad, Err: errors.New("symbol outside substitution range")}
	}
	out, offset, err := radix64Decode(out)
	if err != nil {
		return nil, &MalformedInputError{Stage: StageOuterRadix, Offset: offset, Err: err}
	}
	out = shift(out, c.key, -1)
	// A wrong passphrase usually surfaces from here on.
	out, bad = substituteA.revert(out)
	if bad >= 0 {
		return nil, &InnerMismatchError{Stage: StageSubstituteA, Offset: bad, Err: errors.New("symbol outside substitution range")}
	}
	out, offset, err = radix64Decode(out)
	if err != nil {
		return nil, &InnerMismatchError{Stage: StageInnerRadix, Offset: offset, Err: err}
	}
	return out, nil
}

// Encode is the one-shot form of NewCodec(passphrase, policy).Encode(content).
func Encode(content, passphrase string, policy Policy) (string, error) {
	c, err := NewCodec(passphrase, policy)
	if err != nil {
		return "", err
	}
	return c.Encode(content)
}

// Decode is the one-shot form of NewCodec(passphrase, policy).Decode(content).
// Decoded output is always inside the alphabet, so policy only has to be valid.
func Decode(content, passphrase string, policy Policy) (string, error) {
	c, err := NewCodec(passphrase, policy)
	if err != nil {
		return "", err
	}
	return c.Decode(content)
}

func passphraseKey(passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrInvalidPassphrase
	}
	key, err := ToAlphabet(passphrase, PolicyStrict)
	if err != nil {
		return nil, errors.Join(ErrInvalidPassphrase, err)
	}
	return key, nil
}

// shift adds (dir=+1) or subtracts (dir=-1) the repeating key modulo 256.
func shift(data, key []byte, dir int) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		k := key[i%len(key)]
		if dir > 0 {
			out[i] = b + k
		} else {
			out[i] = b - k
		}
	}
	return out
}

func radix64Encode(data []byte) []byte {
	out := make([]byte, radix64.EncodedLen(len(data)))
	radix64.Encode(out, data)
	return out
}

// radix64Decode returns the decoded bytes, or the error with the offset of
// the first corrupt symbol.
func radix64Decode(data []byte) ([]byte, int, error) {
	out := make([]byte, radix64.DecodedLen(len(data)))
	n, err := radix64.Decode(out, data)
	if err != nil {
		offset := 0
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) {
			offset = int(corrupt)
		}
		return nil, offset, err
	}
	return out[:n], 0, nil
}
