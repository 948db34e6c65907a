package dns

import (
	"slices"

	"github.com/kitsunedns/kitsunedns/internal/helpers"
)

// Message represents a complete DNS message (RFC 1035 Section 4.1).
//
// DNS messages are composed of five sections:
//   - Header: Transaction ID, flags, section counts
//   - Questions: What is being asked (exactly 1 for queries this server accepts)
//   - Answers: Resource records answering the question
//   - Authorities: Name servers authoritative for the domain
//   - Additionals: Extra records riding along (e.g., A records for NS targets)
type Message struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord
}

// Marshal serializes the message to DNS wire format (big-endian). Section
// counts in the emitted header are recomputed from the actual slice lengths,
// so callers never have to keep them in sync by hand.
func (m Message) Marshal() ([]byte, error) {
	h := Header{
		ID:      m.Header.ID,
		Flags:   m.Header.Flags,
		QDCount: helpers.ClampIntToUint16(len(m.Questions)),
		ANCount: helpers.ClampIntToUint16(len(m.Answers)),
		NSCount: helpers.ClampIntToUint16(len(m.Authorities)),
		ARCount: helpers.ClampIntToUint16(len(m.Additionals)),
	}

	// Estimate capacity: header(12) + question(~50) + records(~100 each)
	estimatedSize := HeaderSize + len(m.Questions)*50 +
		(len(m.Answers)+len(m.Authorities)+len(m.Additionals))*100
	out := make([]byte, 0, estimatedSize)
	out = append(out, h.Marshal()...)

	for _, q := range m.Questions {
		qb, err := q.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, qb...)
	}

	if err := appendRecords(&out, m.Answers); err != nil {
		return nil, err
	}
	if err := appendRecords(&out, m.Authorities); err != nil {
		return nil, err
	}
	if err := appendRecords(&out, m.Additionals); err != nil {
		return nil, err
	}

	return out, nil
}

// appendRecords marshals and appends records to the output buffer.
func appendRecords(out *[]byte, records []ResourceRecord) error {
	for _, r := range records {
		b, err := r.Marshal()
		if err != nil {
			return err
		}
		*out = append(*out, b...)
	}
	return nil
}

// ParseMessage parses a complete DNS message from wire format. Bytes beyond
// the records announced in the header are ignored.
func ParseMessage(msg []byte) (Message, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Message{}, err
	}

	m := Message{Header: h}

	// Cap initial allocations to avoid DoS with large counts in the header
	// but a small actual message.
	m.Questions = make([]Question, 0, min(int(h.QDCount), MaxQuestions))
	for range h.QDCount {
		q, err := ParseQuestion(msg, &off)
		if err != nil {
			return Message{}, err
		}
		m.Questions = append(m.Questions, q)
	}
	m.Answers = make([]ResourceRecord, 0, min(int(h.ANCount), MaxRRPerSection))
	for range h.ANCount {
		r, err := ParseRecord(msg, &off)
		if err != nil {
			return Message{}, err
		}
		m.Answers = append(m.Answers, r)
	}
	m.Authorities = make([]ResourceRecord, 0, min(int(h.NSCount), MaxRRPerSection))
	for range h.NSCount {
		r, err := ParseRecord(msg, &off)
		if err != nil {
			return Message{}, err
		}
		m.Authorities = append(m.Authorities, r)
	}
	m.Additionals = make([]ResourceRecord, 0, min(int(h.ARCount), MaxRRPerSection))
	for range h.ARCount {
		r, err := ParseRecord(msg, &off)
		if err != nil {
			return Message{}, err
		}
		m.Additionals = append(m.Additionals, r)
	}
	return m, nil
}

// Question returns the first question, which is the only one for queries
// this server accepts.
func (m Message) Question() (Question, bool) {
	if len(m.Questions) == 0 {
		return Question{}, false
	}
	return m.Questions[0], true
}

// RCode returns the response code from the header flags.
func (m Message) RCode() RCode {
	return m.Header.RCode()
}

// Clone returns a copy with independent section slices so the caller can
// rewrite headers and TTLs without touching the original. Record Data slices
// are shared: rdata is immutable once built.
func (m Message) Clone() Message {
	return Message{
		Header:      m.Header,
		Questions:   slices.Clone(m.Questions),
		Answers:     slices.Clone(m.Answers),
		Authorities: slices.Clone(m.Authorities),
		Additionals: slices.Clone(m.Additionals),
	}
}

// MinTTL returns the smallest TTL across all record sections. ok is false
// when the message carries no records at all.
func (m Message) MinTTL() (uint32, bool) {
	var lowest uint32
	found := false
	for _, section := range [][]ResourceRecord{m.Answers, m.Authorities, m.Additionals} {
		for _, r := range section {
			if !found || r.TTL < lowest {
				lowest = r.TTL
				found = true
			}
		}
	}
	return lowest, found
}

// RecordCount returns the total number of resource records in all sections.
func (m Message) RecordCount() int {
	return len(m.Answers) + len(m.Authorities) + len(m.Additionals)
}
