// Package rhd implements the RHD transform: a reversible, passphrase-driven
// obfuscation of text content.
//
// The transform is NOT encryption. It hides content from casual inspection
// and keeps it safe to store in text columns; it gives no confidentiality
// guarantee against anyone holding the passphrase or the tables below.
//
// ALPHABET:
//
// The engine works over a fixed 256-symbol alphabet, ISO-8859-1, where a
// symbol's index is its byte value. Unicode text is mapped onto the alphabet
// before encoding. Runes outside it are resolved by a Policy:
//   - PolicyStrict: fail with *UnsupportedSymbolError
//   - PolicyReplace: substitute '?' (lossy)
//   - PolicyIgnore: drop the rune (lossy, changes length)
//
// STAGES:
//
// Encode runs five stages, each consuming the previous stage's output:
//  1. radix-64 encode (standard alphabet, '=' padding)
//  2. Substitute-A (static involution over the radix-64 alphabet)
//  3. shift: add passphrase[i mod len] to each symbol, modulo 256
//  4. radix-64 encode again
//  5. Substitute-B (a second, distinct involution)
//
// Decode undoes them in reverse order, subtracting in the shift stage.
//
// For content inside the alphabet and any valid passphrase p:
//
//	Decode(Encode(c, p, PolicyStrict), p, PolicyStrict) == c
//
// Decoding with the wrong passphrase is not guaranteed to fail; it may
// produce well-formed but wrong content. When it does fail, the failure is an
// *InnerMismatchError. Structural corruption of the stored content is
// reported as *MalformedInputError.
//
// The package holds no mutable state. Every call is independent and safe for
// concurrent use.
package rhd
