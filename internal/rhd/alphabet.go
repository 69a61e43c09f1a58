package rhd

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Placeholder replaces unsupported runes under PolicyReplace.
const Placeholder = '?'

// Policy decides what happens to runes outside the alphabet.
type Policy string

const (
	PolicyStrict  Policy = "strict"
	PolicyReplace Policy = "replace"
	PolicyIgnore  Policy = "ignore"
)

// Policies lists the accepted policy names in display order.
var Policies = []Policy{PolicyStrict, PolicyReplace, PolicyIgnore}

// ParsePolicy converts a name into a Policy. The empty string means strict.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return PolicyStrict, nil
	case PolicyStrict, PolicyReplace, PolicyIgnore:
		return p, nil
	default:
		return "", fmt.Errorf("unknown policy %q: must be one of %v", name, Policies)
	}
}

// Lossy reports whether the policy may alter content before encoding.
func (p Policy) Lossy() bool {
	return p == PolicyReplace || p == PolicyIgnore
}

func (p Policy) String() string {
	return string(p)
}

// ToAlphabet maps text onto alphabet bytes, resolving runes outside the
// alphabet with policy. Invalid UTF-8 sequences count as unsupported runes.
func ToAlphabet(text string, policy Policy) ([]byte, error) {
	out := make([]byte, 0, len(text))
	pos := 0
	for _, r := range text {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, b)
			pos++
			continue
		}
		switch policy {
		case PolicyReplace:
			out = append(out, Placeholder)
		case PolicyIgnore:
		default:
			return nil, &UnsupportedSymbolError{Position: pos, Symbol: r}
		}
		pos++
	}
	return out, nil
}

// FromAlphabet maps alphabet bytes back to text. Every byte is a valid symbol.
func FromAlphabet(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(charmap.ISO8859_1.DecodeByte(b))
	}
	return sb.String()
}

// InAlphabet reports whether every rune of text is an alphabet symbol.
func InAlphabet(text string) bool {
	for _, r := range text {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}
