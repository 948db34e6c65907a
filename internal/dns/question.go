package dns

import (
	"encoding/binary"
	"fmt"
)

// Question represents a DNS question section entry (RFC 1035 Section 4.1.2).
//
// Each question specifies what the client is asking for:
//   - Name: The domain name being queried
//   - Type: The record type requested (A, AAAA, MX, etc.)
//   - Class: Usually ClassIN (Internet)
type Question struct {
	Name  string
	Type  RecordType
	Class RecordClass
}

// Marshal serializes the question to DNS wire format.
func (q Question) Marshal() ([]byte, error) {
	name, err := EncodeName(q.Name)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, len(name)+4)
	b = append(b, name...)
	b = binary.BigEndian.AppendUint16(b, uint16(q.Type))
	b = binary.BigEndian.AppendUint16(b, uint16(q.Class))
	return b, nil
}

// ParseQuestion parses a question from the message at the given offset.
// It advances *off past the parsed question on success.
func ParseQuestion(msg []byte, off *int) (Question, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return Question{}, err
	}
	if *off+4 > len(msg) {
		return Question{}, fmt.Errorf("%w: unexpected EOF while reading DNS question", ErrMalformedMessage)
	}
	q := Question{
		Name:  name,
		Type:  RecordType(binary.BigEndian.Uint16(msg[*off : *off+2])),
		Class: RecordClass(binary.BigEndian.Uint16(msg[*off+2 : *off+4])),
	}
	*off += 4
	return q, nil
}

// Equal compares two questions, case-insensitively on the name and exactly
// on type and class. Upstream responses are validated against the question
// that was sent using this comparison.
func (q Question) Equal(other Question) bool {
	return q.Type == other.Type &&
		q.Class == other.Class &&
		NormalizeName(q.Name) == NormalizeName(other.Name)
}

// String renders the question in dig-like presentation form.
func (q Question) String() string {
	return fmt.Sprintf("%s. %s %s", NormalizeName(q.Name), q.Class, q.Type)
}
