package dns

import (
	"fmt"

	"github.com/kitsunedns/kitsunedns/internal/helpers"
)

// Limits for incoming DNS messages to prevent resource exhaustion attacks.
const (
	MaxIncomingDNSMessageSize = 4096 // Maximum size of incoming DNS message
	MaxQuestions              = 4    // Maximum questions per query before parsing is abandoned
	MaxRRPerSection           = 100  // Maximum resource records per section
	MaxTotalRR                = 200  // Maximum total resource records
)

// ParseRequestBounded parses a DNS request with security bounds checking.
// It validates that the message is a standard query (not a response),
// uses opcode 0 (QUERY), and doesn't exceed resource limits.
//
// Returns an error wrapping ErrMalformedMessage if:
//   - Message exceeds MaxIncomingDNSMessageSize
//   - QR flag is set (packet is a response, not a query)
//   - Opcode is not 0 (only standard queries are supported)
//   - Question count is not exactly 1, or RR counts exceed limits
//
// Datagrams failing any of these checks are dropped by the server without
// a reply; the error here feeds the drop counter and the debug log only.
func ParseRequestBounded(msg []byte) (Message, error) {
	if len(msg) > MaxIncomingDNSMessageSize {
		return Message{}, fmt.Errorf("%w: message too large (%d bytes)", ErrMalformedMessage, len(msg))
	}
	m, err := ParseMessage(msg)
	if err != nil {
		return Message{}, err
	}

	if m.Header.IsResponse() {
		return Message{}, fmt.Errorf("%w: QR flag set (response received on query path)", ErrMalformedMessage)
	}

	if opcode := m.Header.Opcode(); opcode != 0 {
		return Message{}, fmt.Errorf("%w: unsupported opcode %d", ErrMalformedMessage, opcode)
	}

	if err := validateSectionCounts(m.Header); err != nil {
		return Message{}, err
	}

	return m, nil
}

// validateSectionCounts checks that section counts don't exceed limits.
func validateSectionCounts(h Header) error {
	qd := int(h.QDCount)
	an := int(h.ANCount)
	ns := int(h.NSCount)
	ar := int(h.ARCount)

	if qd > MaxQuestions {
		return fmt.Errorf("%w: too many questions (%d)", ErrMalformedMessage, qd)
	}
	if qd != 1 {
		return fmt.Errorf("%w: unsupported question count %d", ErrMalformedMessage, qd)
	}
	if an > MaxRRPerSection || ns > MaxRRPerSection || ar > MaxRRPerSection {
		return fmt.Errorf("%w: too many resource records in a section", ErrMalformedMessage)
	}
	if (an + ns + ar) > MaxTotalRR {
		return fmt.Errorf("%w: too many total resource records (%d)", ErrMalformedMessage, an+ns+ar)
	}
	return nil
}

// BuildErrorResponse constructs a DNS error response message.
// It preserves the transaction ID and RD flag from the request,
// sets the QR flag (response), and applies the given response code.
//
// The response includes the original question section but no records.
func BuildErrorResponse(req Message, rcode RCode) Message {
	h := Header{
		ID:      req.Header.ID,
		Flags:   buildResponseFlags(req.Header.Flags, rcode),
		QDCount: helpers.ClampIntToUint16(len(req.Questions)),
	}
	return Message{Header: h, Questions: req.Questions}
}

// buildResponseFlags constructs the flags field for an error response:
// QR set, RD echoed from the request, RCODE in the low 4 bits.
func buildResponseFlags(reqFlags uint16, rcode RCode) uint16 {
	flags := QRFlag
	flags |= reqFlags & RDFlag
	return (flags &^ RCodeMask) | (uint16(rcode) & RCodeMask)
}

// BuildQuery constructs a single-question query message, the shape sent to
// upstream servers and by the query CLI.
func BuildQuery(id uint16, name string, rtype RecordType, rclass RecordClass, recursionDesired bool) Message {
	var flags uint16
	if recursionDesired {
		flags |= RDFlag
	}
	return Message{
		Header:    Header{ID: id, Flags: flags, QDCount: 1},
		Questions: []Question{{Name: name, Type: rtype, Class: rclass}},
	}
}

// PatchTransactionID overwrites the transaction ID of a wire-format message
// in place. The ID lives in the first two bytes.
func PatchTransactionID(msg []byte, id uint16) error {
	if len(msg) < 2 {
		return fmt.Errorf("%w: message shorter than a transaction ID", ErrMalformedMessage)
	}
	msg[0] = byte(id >> 8)
	msg[1] = byte(id)
	return nil
}
