package rhd

import "fmt"

// radix64Symbols is the domain of both substitution tables: the standard
// radix-64 alphabet plus the padding symbol.
const radix64Symbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

// substitution is a static one-to-one mapping over radix64Symbols.
// Symbols not named in the pair list map to themselves.
type substitution struct {
	name    string
	forward [256]byte
	inverse [256]byte
	domain  [256]bool
}

var (
	substituteA = mustSubstitution("A", map[byte]byte{
		'=': 'V', 'z': 'm', '5': 'G', 'H': 'a', '1': 'x',
		'N': 'C', 'q': 'p', 'r': '8', '/': '+', 'J': 'i',
		'2': 'w', '9': 'T', 's': 'h', 'l': 'Z', 'V': '=',
		'm': 'z', 'G': '5', 'a': 'H', 'x': '1', 'C': 'N',
		'p': 'q', '8': 'r', '+': '/', 'i': 'J', 'w': '2',
		'T': '9', 'h': 's', 'Z': 'l',
	})

	substituteB = mustSubstitution("B", map[byte]byte{
		'=': 'Q', 'A': 'k', '3': 'f', 'b': 'Y', '7': 'D',
		'u': 'E', '+': '0', 'L': 't', 'c': 'W', '6': 'R',
		'/': 'n', 'g': 'M', '4': 'U', 'j': 'X', 'Q': '=',
		'k': 'A', 'f': '3', 'Y': 'b', 'D': '7', 'E': 'u',
		'0': '+', 't': 'L', 'W': 'c', 'R': '6', 'n': '/',
		'M': 'g', 'U': '4', 'X': 'j',
	})
)

func mustSubstitution(name string, pairs map[byte]byte) *substitution {
	s, err := newSubstitution(name, pairs)
	if err != nil {
		panic(err)
	}
	return s
}

// newSubstitution builds a table and verifies it is a bijection over
// radix64Symbols.
func newSubstitution(name string, pairs map[byte]byte) (*substitution, error) {
	s := &substitution{name: name}
	for i := range s.forward {
		s.forward[i] = byte(i)
	}
	for i := 0; i < len(radix64Symbols); i++ {
		s.domain[radix64Symbols[i]] = true
	}

	for from, to := range pairs {
		if !s.domain[from] || !s.domain[to] {
			return nil, fmt.Errorf("substitute-%s: pair %q -> %q leaves the radix-64 alphabet", name, from, to)
		}
		s.forward[from] = to
	}

	var seen [256]bool
	for i := 0; i < len(radix64Symbols); i++ {
		from := radix64Symbols[i]
		to := s.forward[from]
		if seen[to] {
			return nil, fmt.Errorf("substitute-%s: symbol %q is the image of more than one symbol", name, to)
		}
		seen[to] = true
		s.inverse[to] = from
	}
	return s, nil
}

// apply maps src through the forward table. Every byte must be in the domain.
func (s *substitution) apply(src []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = s.forward[b]
	}
	return out
}

// revert maps src through the inverse table and returns the offset of the
// first symbol outside the domain, or -1.
func (s *substitution) revert(src []byte) ([]byte, int) {
	out := make([]byte, len(src))
	for i, b := range src {
		if !s.domain[b] {
			return nil, i
		}
		out[i] = s.inverse[b]
	}
	return out, -1
}
