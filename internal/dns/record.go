package dns

import (
	"encoding/binary"
	"fmt"

	"github.com/kitsunedns/kitsunedns/internal/helpers"
)

// ResourceRecord represents a single DNS resource record (RFC 1035 Section 4.1.3).
//
// Wire format:
//
//	NAME:     variable (possibly compressed domain name)
//	TYPE:     2 bytes
//	CLASS:    2 bytes
//	TTL:      4 bytes
//	RDLENGTH: 2 bytes
//	RDATA:    RDLENGTH bytes
//
// Data always holds uncompressed rdata: record types whose rdata embeds
// domain names (NS, CNAME, PTR, MX, SOA, SRV) may arrive with compression
// pointers, which ParseRecord resolves against the whole message and
// re-encodes in full. A ResourceRecord is therefore self-contained, and the
// presentation form (Text) derives from Data alone, so the two views cannot
// disagree. Data is treated as immutable once the record is built.
type ResourceRecord struct {
	Name  string
	Type  RecordType
	Class RecordClass
	TTL   uint32
	Data  []byte
}

// fixedRRSize is the byte count of the fixed fields following the name:
// TYPE(2) + CLASS(2) + TTL(4) + RDLENGTH(2).
const fixedRRSize = 10

// ParseRecord parses a resource record from wire format, advancing *off past
// it on success. msg must be the whole message so that compression pointers
// inside the name and the rdata can be resolved.
func ParseRecord(msg []byte, off *int) (ResourceRecord, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return ResourceRecord{}, err
	}
	if *off+fixedRRSize > len(msg) {
		return ResourceRecord{}, fmt.Errorf("%w: unexpected EOF while reading DNS record", ErrMalformedMessage)
	}
	rrType := RecordType(binary.BigEndian.Uint16(msg[*off : *off+2]))
	rrClass := RecordClass(binary.BigEndian.Uint16(msg[*off+2 : *off+4]))
	ttl := binary.BigEndian.Uint32(msg[*off+4 : *off+8])
	rdlen := int(binary.BigEndian.Uint16(msg[*off+8 : *off+10]))
	*off += fixedRRSize

	start := *off
	if start+rdlen > len(msg) {
		return ResourceRecord{}, fmt.Errorf("%w: unexpected EOF while reading DNS record rdata", ErrMalformedMessage)
	}
	*off += rdlen

	data, err := decodeRData(rrType, msg, start, rdlen)
	if err != nil {
		return ResourceRecord{}, err
	}

	return ResourceRecord{
		Name:  name,
		Type:  rrType,
		Class: rrClass,
		TTL:   ttl,
		Data:  data,
	}, nil
}

// Marshal converts the record to wire-format bytes. Names are written in
// full; compression pointers are never emitted.
func (r ResourceRecord) Marshal() ([]byte, error) {
	nameWire, err := EncodeName(r.Name)
	if err != nil {
		return nil, err
	}
	if len(r.Data) > 65535 {
		return nil, fmt.Errorf("%w: rdata too large: %d bytes (max 65535)", ErrMalformedMessage, len(r.Data))
	}

	out := make([]byte, 0, len(nameWire)+fixedRRSize+len(r.Data))
	out = append(out, nameWire...)
	fixed := make([]byte, fixedRRSize)
	binary.BigEndian.PutUint16(fixed[0:2], uint16(r.Type))
	binary.BigEndian.PutUint16(fixed[2:4], uint16(r.Class))
	binary.BigEndian.PutUint32(fixed[4:8], r.TTL)
	binary.BigEndian.PutUint16(fixed[8:10], helpers.ClampIntToUint16(len(r.Data)))
	out = append(out, fixed...)
	out = append(out, r.Data...)
	return out, nil
}

// String renders the record in zone-file presentation form:
// "example.com. 300 IN A 93.184.216.34".
func (r ResourceRecord) String() string {
	return fmt.Sprintf("%s. %d %s %s %s", NormalizeName(r.Name), r.TTL, r.Class, r.Type, r.Text())
}
