package dns

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// NormalizeName lowercases a domain name and strips the trailing dot.
// DNS names compare case-insensitively per RFC 1035 Section 3.1, so every
// map key (cache, record store) goes through this first.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// maxPresentationName is the longest presentation-form name a valid 255-byte
// wire name can produce (255 minus the root byte and one length byte).
const maxPresentationName = 253

// EncodeName encodes a domain name to DNS wire format (RFC 1035 Section 3.1).
//
// DNS names are encoded as a sequence of labels, where each label is:
//   - 1 byte: length (0-63)
//   - N bytes: label characters
//
// The name is terminated by a zero-length label (single 0x00 byte).
//
// Example: "www.example.com" encodes as:
//
//	[3]www[7]example[3]com[0]
//	0x03 'w' 'w' 'w' 0x07 'e' 'x' 'a' 'm' 'p' 'l' 'e' 0x03 'c' 'o' 'm' 0x00
//
// Constraints:
//   - Each label max 63 bytes
//   - Total encoded name max 255 bytes
//   - ASCII only (no IDN/punycode handled here)
//
// Compression pointers are never emitted; decoding accepts them, encoding
// always writes the full name.
func EncodeName(domain string) ([]byte, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: domain name must be non-empty", ErrMalformedMessage)
	}
	domain = trimDot(domain)
	if domain == "" {
		return []byte{0}, nil // Root domain
	}

	out := make([]byte, 0, len(domain)+2)
	labelStart := 0
	for i := 0; i <= len(domain); i++ {
		if i == len(domain) || domain[i] == '.' {
			if i == labelStart {
				return nil, fmt.Errorf("%w: invalid domain name (empty label): %q", ErrMalformedMessage, domain)
			}
			label := domain[labelStart:i]

			for j := range len(label) {
				if label[j] > 0x7F {
					return nil, fmt.Errorf("%w: domain name must be ASCII", ErrMalformedMessage)
				}
			}

			if len(label) > 63 {
				return nil, fmt.Errorf("%w: DNS label too long (%d > 63): %q", ErrMalformedMessage, len(label), label)
			}

			out = append(out, byte(len(label)))
			out = append(out, label...)
			labelStart = i + 1
		}
	}
	out = append(out, 0) // Terminating zero-length label

	if len(out) > 255 {
		return nil, fmt.Errorf("%w: encoded domain name too long (%d > 255)", ErrMalformedMessage, len(out))
	}
	return out, nil
}

// DecodeName decodes a possibly-compressed DNS name from wire format.
//
// DNS name compression (RFC 1035 Section 4.1.4) uses pointers to reuse
// earlier names in the same message. A compression pointer is identified by
// the two high bits of a label length byte being set (11xxxxxx = 0xC0); the
// remaining 14 bits are an offset from the start of the message:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	| 1  1|                OFFSET                   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//
// Pointers must target an offset strictly before the pointer itself. A
// self-referencing or forward pointer is rejected, which also rules out
// pointer loops since each hop moves strictly toward the message start.
//
// This function reads from msg starting at *off, advancing *off past the
// encoded name (including any compression pointer bytes).
//
// Returns an ASCII, dot-separated name without a trailing dot.
func DecodeName(msg []byte, off *int) (string, error) {
	name, err := decodeName(msg, off, 0)
	if err != nil {
		return "", err
	}
	if len(name) > maxPresentationName {
		return "", fmt.Errorf("%w: decoded DNS name too long (%d > %d)", ErrMalformedMessage, len(name), maxPresentationName)
	}
	return name, nil
}

// decodeName is the recursive implementation of DecodeName. Recursion depth
// is capped as a second bound on pointer chains.
func decodeName(msg []byte, off *int, depth int) (string, error) {
	const maxIndirections = 20

	if depth > maxIndirections {
		return "", fmt.Errorf("%w: too many DNS compression pointer indirections", ErrMalformedMessage)
	}
	if *off < 0 || *off >= len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF while decoding DNS name", ErrMalformedMessage)
	}

	// Pre-allocate for typical domain depth (e.g., www.example.com = 3 labels)
	labels := make([]string, 0, 6)
	for {
		if *off >= len(msg) {
			return "", fmt.Errorf("%w: unexpected EOF while decoding DNS name", ErrMalformedMessage)
		}
		labelPos := *off
		labelLen := msg[*off]
		*off++

		// Zero-length label marks end of name
		if labelLen == 0 {
			break
		}

		// Compression pointer (high 2 bits = 11): the name continues at the target
		if isCompressionPointer(labelLen) {
			rest, err := followCompressionPointer(msg, off, labelLen, labelPos, depth)
			if err != nil {
				return "", err
			}
			if rest != "" {
				labels = append(labels, rest)
			}
			break
		}

		// Reserved label types (high 2 bits = 01 or 10) per RFC 1035
		if hasReservedBits(labelLen) {
			return "", fmt.Errorf("%w: invalid DNS label length (reserved high bits set)", ErrMalformedMessage)
		}

		label, err := readLabel(msg, off, int(labelLen))
		if err != nil {
			return "", err
		}
		labels = append(labels, label)
	}

	return joinLabels(labels), nil
}

// isCompressionPointer checks if the label length byte indicates a compression pointer.
// Compression pointers have the two high bits set (11xxxxxx = 0xC0 mask).
func isCompressionPointer(b byte) bool {
	return (b & 0xC0) == 0xC0
}

// hasReservedBits checks if the label uses reserved encoding (01xxxxxx or 10xxxxxx).
// These patterns are reserved for future use per RFC 1035.
func hasReservedBits(b byte) bool {
	return (b & 0xC0) != 0
}

// followCompressionPointer follows a DNS compression pointer and returns the
// name at its target. The pointer value is 14 bits: the low 6 bits of the
// first byte combined with the second byte.
//
// pointerPos is the absolute offset of the pointer's first byte. The target
// must be strictly less than pointerPos; pointing at itself or forward would
// allow loops and unbounded walks, so both are malformed.
func followCompressionPointer(msg []byte, off *int, firstByte byte, pointerPos, depth int) (string, error) {
	if *off >= len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF while decoding compression pointer", ErrMalformedMessage)
	}

	// Extract 14-bit pointer: mask off high 2 bits of first byte, combine with second byte
	ptr := int(binary.BigEndian.Uint16([]byte{firstByte & 0x3F, msg[*off]}))
	*off++

	if ptr >= pointerPos {
		return "", fmt.Errorf("%w: DNS compression pointer must point backward (target %d, pointer at %d)", ErrMalformedMessage, ptr, pointerPos)
	}

	ptrOff := ptr
	return decodeName(msg, &ptrOff, depth+1)
}

// readLabel reads a single DNS label of the given length.
func readLabel(msg []byte, off *int, length int) (string, error) {
	if *off+length > len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF while reading DNS label", ErrMalformedMessage)
	}
	label := msg[*off : *off+length]
	*off += length

	for _, b := range label {
		if b > 0x7F {
			return "", fmt.Errorf("%w: decoded DNS name was not ASCII", ErrMalformedMessage)
		}
	}
	return string(label), nil
}

// trimDot removes all trailing dots from a string.
func trimDot(s string) string {
	for len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// joinLabels concatenates DNS labels with dots.
func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	if len(labels) == 1 {
		return labels[0]
	}
	totalSize := len(labels) - 1 // dots
	for _, label := range labels {
		totalSize += len(label)
	}
	var b strings.Builder
	b.Grow(totalSize)
	b.WriteString(labels[0])
	for i := 1; i < len(labels); i++ {
		b.WriteByte('.')
		b.WriteString(labels[i])
	}
	return b.String()
}
