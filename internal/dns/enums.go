package dns

import (
	"fmt"
	"strings"
)

// DNS header flags and masks (RFC 1035 Section 4.1.1)
//
// The DNS header contains a 16-bit flags field with the following layout:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z|AD|CD|   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
const (
	QRFlag     uint16 = 0x8000 // Query/Response: 1 = response, 0 = query
	OpcodeMask uint16 = 0x7800 // Bits 14-11: operation type (use >> 11 to extract)
	AAFlag     uint16 = 0x0400 // Authoritative Answer
	TCFlag     uint16 = 0x0200 // Truncation: message was truncated
	RDFlag     uint16 = 0x0100 // Recursion Desired
	RAFlag     uint16 = 0x0080 // Recursion Available
	ZFlag      uint16 = 0x0040 // Reserved (must be zero in queries)
	ADFlag     uint16 = 0x0020 // Authenticated Data (unused here, passed through)
	CDFlag     uint16 = 0x0010 // Checking Disabled (unused here, passed through)
	RCodeMask  uint16 = 0x000F // Bits 3-0: response code
)

// RecordType represents DNS resource record types (RFC 1035, RFC 3596, RFC 2782).
// The set is closed: unknown types still parse (opaque rdata) but render as TYPEn.
type RecordType uint16

const (
	TypeA     RecordType = 1   // IPv4 address
	TypeNS    RecordType = 2   // Authoritative name server
	TypeCNAME RecordType = 5   // Canonical name (alias)
	TypeSOA   RecordType = 6   // Start of Authority
	TypePTR   RecordType = 12  // Domain name pointer (reverse DNS)
	TypeMX    RecordType = 15  // Mail exchange
	TypeTXT   RecordType = 16  // Text strings
	TypeAAAA  RecordType = 28  // IPv6 address (RFC 3596)
	TypeSRV   RecordType = 33  // Service locator (RFC 2782)
	TypeANY   RecordType = 255 // All records (question sections only)
)

var recordTypeNames = map[RecordType]string{
	TypeA:     "A",
	TypeNS:    "NS",
	TypeCNAME: "CNAME",
	TypeSOA:   "SOA",
	TypePTR:   "PTR",
	TypeMX:    "MX",
	TypeTXT:   "TXT",
	TypeAAAA:  "AAAA",
	TypeSRV:   "SRV",
	TypeANY:   "ANY",
}

// String returns the mnemonic for known types and "TYPEn" otherwise,
// following the RFC 3597 convention for unknown types.
func (t RecordType) String() string {
	if s, ok := recordTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// RecordTypeFromString parses a type mnemonic ("A", "MX", ...), case-insensitive.
// Used by the zone file loader, the record database, and the management API.
func RecordTypeFromString(s string) (RecordType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range recordTypeNames {
		if name == upper {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown record type %q", ErrMalformedMessage, s)
}

// RecordClass represents DNS resource record classes (RFC 1035).
type RecordClass uint16

const (
	ClassIN  RecordClass = 1   // Internet
	ClassCS  RecordClass = 2   // CSNET (obsolete)
	ClassCH  RecordClass = 3   // Chaos
	ClassHS  RecordClass = 4   // Hesiod
	ClassANY RecordClass = 255 // Any class (question sections only)
)

var recordClassNames = map[RecordClass]string{
	ClassIN:  "IN",
	ClassCS:  "CS",
	ClassCH:  "CH",
	ClassHS:  "HS",
	ClassANY: "ANY",
}

// String returns the mnemonic for known classes and "CLASSn" otherwise.
func (c RecordClass) String() string {
	if s, ok := recordClassNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

// RecordClassFromString parses a class mnemonic ("IN", "CH", ...), case-insensitive.
func RecordClassFromString(s string) (RecordClass, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for c, name := range recordClassNames {
		if name == upper {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown record class %q", ErrMalformedMessage, s)
}

// RCode represents DNS response codes (RFC 1035, RFC 2136).
type RCode uint16

const (
	RCodeNoError  RCode = 0  // No error
	RCodeFormErr  RCode = 1  // Format error: query malformed
	RCodeServFail RCode = 2  // Server failure: could not resolve
	RCodeNXDomain RCode = 3  // Non-existent domain
	RCodeNotImp   RCode = 4  // Not implemented: unsupported query type
	RCodeRefused  RCode = 5  // Query refused by policy
	RCodeYXDomain RCode = 6  // Name exists when it should not
	RCodeYXRRSet  RCode = 7  // RR set exists when it should not
	RCodeNXRRSet  RCode = 8  // RR set that should exist does not
	RCodeNotAuth  RCode = 9  // Server not authoritative for zone
	RCodeNotZone  RCode = 10 // Name not contained in zone
)

var rcodeNames = map[RCode]string{
	RCodeNoError:  "NOERROR",
	RCodeFormErr:  "FORMERR",
	RCodeServFail: "SERVFAIL",
	RCodeNXDomain: "NXDOMAIN",
	RCodeNotImp:   "NOTIMP",
	RCodeRefused:  "REFUSED",
	RCodeYXDomain: "YXDOMAIN",
	RCodeYXRRSet:  "YXRRSET",
	RCodeNXRRSet:  "NXRRSET",
	RCodeNotAuth:  "NOTAUTH",
	RCodeNotZone:  "NOTZONE",
}

// String returns the mnemonic for known rcodes and "RCODEn" otherwise.
func (r RCode) String() string {
	if s, ok := rcodeNames[r]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", uint16(r))
}

// RCodeFromFlags extracts the response code from the DNS header flags.
// The RCODE occupies the low 4 bits of the flags field.
func RCodeFromFlags(flags uint16) RCode {
	return RCode(flags & RCodeMask)
}
