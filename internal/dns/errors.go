// Package dns implements the DNS wire format subset used by the resolver:
// header, question and resource record codecs, compressed name decoding,
// and whole-message assembly.
//
// Standards Compliance:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core protocol)
//   - RFC 1034: Domain Names - Concepts and Facilities
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//   - RFC 2782: A DNS RR for specifying the location of services (SRV)
//
// Records are concrete values: a ResourceRecord carries its rdata as
// uncompressed wire bytes, and the presentation form is always derived from
// those bytes, so the two representations cannot drift apart.
//
// Error Handling:
//
// Every decoding failure wraps ErrMalformedMessage with context via
// fmt.Errorf("%w: ...", ...). Callers branch with errors.Is.
package dns

import "errors"

var (
	// ErrMalformedMessage is the sentinel for DNS wire format violations.
	// Wrap it with fmt.Errorf("%w: context", ErrMalformedMessage) to add context.
	ErrMalformedMessage = errors.New("malformed dns message")
)
