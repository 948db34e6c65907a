package dns

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// decodeRData converts the raw rdata at msg[start:start+rdlen] into the
// self-contained form stored on a ResourceRecord. For types that embed
// domain names, any compression pointers are resolved against the whole
// message and the names re-encoded in full. Everything else is copied
// verbatim (TXT character strings carry no pointers, and unknown types are
// passed through opaquely).
func decodeRData(rt RecordType, msg []byte, start, rdlen int) ([]byte, error) {
	switch rt {
	case TypeA:
		if rdlen != 4 {
			return nil, fmt.Errorf("%w: A record rdata must be 4 bytes (RFC 1035 §3.4.1), got %d", ErrMalformedMessage, rdlen)
		}
		return bytes.Clone(msg[start : start+rdlen]), nil

	case TypeAAAA:
		if rdlen != 16 {
			return nil, fmt.Errorf("%w: AAAA record rdata must be 16 bytes (RFC 3596 §2.2), got %d", ErrMalformedMessage, rdlen)
		}
		return bytes.Clone(msg[start : start+rdlen]), nil

	case TypeNS, TypeCNAME, TypePTR:
		off := start
		target, err := DecodeName(msg, &off)
		if err != nil {
			return nil, err
		}
		if off-start != rdlen {
			return nil, fmt.Errorf("%w: name record rdata length mismatch (RFC 1035 §3.3)", ErrMalformedMessage)
		}
		return EncodeName(rootIfEmpty(target))

	case TypeMX:
		if rdlen < 3 {
			return nil, fmt.Errorf("%w: MX record rdata too short (RFC 1035 §3.3.9), got %d bytes", ErrMalformedMessage, rdlen)
		}
		preference := binary.BigEndian.Uint16(msg[start : start+2])
		off := start + 2
		exchange, err := DecodeName(msg, &off)
		if err != nil {
			return nil, err
		}
		if off-start != rdlen {
			return nil, fmt.Errorf("%w: MX record rdata length mismatch", ErrMalformedMessage)
		}
		return buildMXData(preference, rootIfEmpty(exchange))

	case TypeSOA:
		off := start
		mname, err := DecodeName(msg, &off)
		if err != nil {
			return nil, err
		}
		rname, err := DecodeName(msg, &off)
		if err != nil {
			return nil, err
		}
		if off+20 != start+rdlen {
			return nil, fmt.Errorf("%w: SOA record rdata length mismatch (RFC 1035 §3.3.13)", ErrMalformedMessage)
		}
		return buildSOAData(rootIfEmpty(mname), rootIfEmpty(rname),
			binary.BigEndian.Uint32(msg[off:off+4]),
			binary.BigEndian.Uint32(msg[off+4:off+8]),
			binary.BigEndian.Uint32(msg[off+8:off+12]),
			binary.BigEndian.Uint32(msg[off+12:off+16]),
			binary.BigEndian.Uint32(msg[off+16:off+20]))

	case TypeSRV:
		if rdlen < 7 {
			return nil, fmt.Errorf("%w: SRV record rdata too short (RFC 2782), got %d bytes", ErrMalformedMessage, rdlen)
		}
		off := start + 6
		target, err := DecodeName(msg, &off)
		if err != nil {
			return nil, err
		}
		if off-start != rdlen {
			return nil, fmt.Errorf("%w: SRV record rdata length mismatch", ErrMalformedMessage)
		}
		return buildSRVData(
			binary.BigEndian.Uint16(msg[start:start+2]),
			binary.BigEndian.Uint16(msg[start+2:start+4]),
			binary.BigEndian.Uint16(msg[start+4:start+6]),
			rootIfEmpty(target))

	default:
		// TXT, OPT and unknown types are carried opaquely.
		return bytes.Clone(msg[start : start+rdlen]), nil
	}
}

// rootIfEmpty maps the empty presentation name back to the root ".".
func rootIfEmpty(name string) string {
	if name == "" {
		return "."
	}
	return name
}

// ----- rdata builders -----

func buildMXData(preference uint16, exchange string) ([]byte, error) {
	nameWire, err := EncodeName(exchange)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2+len(nameWire))
	out = binary.BigEndian.AppendUint16(out, preference)
	return append(out, nameWire...), nil
}

func buildSOAData(mname, rname string, serial, refresh, retry, expire, minimum uint32) ([]byte, error) {
	mnameWire, err := EncodeName(mname)
	if err != nil {
		return nil, err
	}
	rnameWire, err := EncodeName(rname)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(mnameWire)+len(rnameWire)+20)
	out = append(out, mnameWire...)
	out = append(out, rnameWire...)
	out = binary.BigEndian.AppendUint32(out, serial)
	out = binary.BigEndian.AppendUint32(out, refresh)
	out = binary.BigEndian.AppendUint32(out, retry)
	out = binary.BigEndian.AppendUint32(out, expire)
	out = binary.BigEndian.AppendUint32(out, minimum)
	return out, nil
}

func buildSRVData(priority, weight, port uint16, target string) ([]byte, error) {
	nameWire, err := EncodeName(target)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 6+len(nameWire))
	out = binary.BigEndian.AppendUint16(out, priority)
	out = binary.BigEndian.AppendUint16(out, weight)
	out = binary.BigEndian.AppendUint16(out, port)
	return append(out, nameWire...), nil
}

func buildTXTData(chunks []string) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: TXT record needs at least one string", ErrMalformedMessage)
	}
	out := make([]byte, 0, 16)
	for _, chunk := range chunks {
		if len(chunk) > 255 {
			return nil, fmt.Errorf("%w: TXT string too long (%d > 255)", ErrMalformedMessage, len(chunk))
		}
		out = append(out, byte(len(chunk)))
		out = append(out, chunk...)
	}
	return out, nil
}

// ----- record constructors -----

func newRecord(name string, rt RecordType, ttl uint32, data []byte) ResourceRecord {
	return ResourceRecord{
		Name:  NormalizeName(name),
		Type:  rt,
		Class: ClassIN,
		TTL:   ttl,
		Data:  data,
	}
}

// NewA builds an A record from a dotted-quad IPv4 address.
func NewA(name string, ttl uint32, addr string) (ResourceRecord, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil || !ip.Is4() {
		return ResourceRecord{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrMalformedMessage, addr)
	}
	v4 := ip.As4()
	return newRecord(name, TypeA, ttl, v4[:]), nil
}

// NewAAAA builds an AAAA record from an IPv6 address.
func NewAAAA(name string, ttl uint32, addr string) (ResourceRecord, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil || !ip.Is6() || ip.Is4In6() {
		return ResourceRecord{}, fmt.Errorf("%w: %q is not an IPv6 address", ErrMalformedMessage, addr)
	}
	v6 := ip.As16()
	return newRecord(name, TypeAAAA, ttl, v6[:]), nil
}

// NewCNAME builds a CNAME record pointing at target.
func NewCNAME(name string, ttl uint32, target string) (ResourceRecord, error) {
	data, err := EncodeName(target)
	if err != nil {
		return ResourceRecord{}, err
	}
	return newRecord(name, TypeCNAME, ttl, data), nil
}

// NewNS builds an NS record delegating to the given name server.
func NewNS(name string, ttl uint32, nameserver string) (ResourceRecord, error) {
	data, err := EncodeName(nameserver)
	if err != nil {
		return ResourceRecord{}, err
	}
	return newRecord(name, TypeNS, ttl, data), nil
}

// NewPTR builds a PTR record for reverse lookups.
func NewPTR(name string, ttl uint32, target string) (ResourceRecord, error) {
	data, err := EncodeName(target)
	if err != nil {
		return ResourceRecord{}, err
	}
	return newRecord(name, TypePTR, ttl, data), nil
}

// NewMX builds an MX record with the given preference and exchange host.
func NewMX(name string, ttl uint32, preference uint16, exchange string) (ResourceRecord, error) {
	data, err := buildMXData(preference, exchange)
	if err != nil {
		return ResourceRecord{}, err
	}
	return newRecord(name, TypeMX, ttl, data), nil
}

// NewTXT builds a TXT record from one or more character strings.
func NewTXT(name string, ttl uint32, chunks ...string) (ResourceRecord, error) {
	data, err := buildTXTData(chunks)
	if err != nil {
		return ResourceRecord{}, err
	}
	return newRecord(name, TypeTXT, ttl, data), nil
}

// NewSOA builds a Start of Authority record.
func NewSOA(name string, ttl uint32, mname, rname string, serial, refresh, retry, expire, minimum uint32) (ResourceRecord, error) {
	data, err := buildSOAData(mname, rname, serial, refresh, retry, expire, minimum)
	if err != nil {
		return ResourceRecord{}, err
	}
	return newRecord(name, TypeSOA, ttl, data), nil
}

// NewSRV builds a service locator record (RFC 2782).
func NewSRV(name string, ttl uint32, priority, weight, port uint16, target string) (ResourceRecord, error) {
	data, err := buildSRVData(priority, weight, port, target)
	if err != nil {
		return ResourceRecord{}, err
	}
	return newRecord(name, TypeSRV, ttl, data), nil
}

// RecordFromText builds a record from its presentation-form rdata, the
// inverse of Text. Zone rows loaded from the database and records submitted
// through the management API arrive in this form.
func RecordFromText(name string, rt RecordType, class RecordClass, ttl uint32, text string) (ResourceRecord, error) {
	rec, err := recordFromText(name, rt, ttl, strings.TrimSpace(text))
	if err != nil {
		return ResourceRecord{}, err
	}
	rec.Class = class
	return rec, nil
}

func recordFromText(name string, rt RecordType, ttl uint32, text string) (ResourceRecord, error) {
	switch rt {
	case TypeA:
		return NewA(name, ttl, text)
	case TypeAAAA:
		return NewAAAA(name, ttl, text)
	case TypeCNAME:
		return NewCNAME(name, ttl, text)
	case TypeNS:
		return NewNS(name, ttl, text)
	case TypePTR:
		return NewPTR(name, ttl, text)

	case TypeMX:
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return ResourceRecord{}, fmt.Errorf("%w: MX rdata must be \"preference exchange\", got %q", ErrMalformedMessage, text)
		}
		preference, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return ResourceRecord{}, fmt.Errorf("%w: invalid MX preference %q", ErrMalformedMessage, fields[0])
		}
		return NewMX(name, ttl, uint16(preference), fields[1])

	case TypeTXT:
		return NewTXT(name, ttl, parseTXTChunks(text)...)

	case TypeSOA:
		fields := strings.Fields(text)
		if len(fields) != 7 {
			return ResourceRecord{}, fmt.Errorf("%w: SOA rdata must have 7 fields, got %d", ErrMalformedMessage, len(fields))
		}
		nums := make([]uint32, 5)
		for i, f := range fields[2:] {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return ResourceRecord{}, fmt.Errorf("%w: invalid SOA field %q", ErrMalformedMessage, f)
			}
			nums[i] = uint32(v)
		}
		return NewSOA(name, ttl, fields[0], fields[1], nums[0], nums[1], nums[2], nums[3], nums[4])

	case TypeSRV:
		fields := strings.Fields(text)
		if len(fields) != 4 {
			return ResourceRecord{}, fmt.Errorf("%w: SRV rdata must be \"priority weight port target\", got %q", ErrMalformedMessage, text)
		}
		nums := make([]uint16, 3)
		for i, f := range fields[:3] {
			v, err := strconv.ParseUint(f, 10, 16)
			if err != nil {
				return ResourceRecord{}, fmt.Errorf("%w: invalid SRV field %q", ErrMalformedMessage, f)
			}
			nums[i] = uint16(v)
		}
		return NewSRV(name, ttl, nums[0], nums[1], nums[2], fields[3])

	default:
		// Unknown types round-trip through their hex rendering.
		data, err := hex.DecodeString(text)
		if err != nil {
			return ResourceRecord{}, fmt.Errorf("%w: rdata for %s must be hex, got %q", ErrMalformedMessage, rt, text)
		}
		return newRecord(name, rt, ttl, data), nil
	}
}

// parseTXTChunks splits presentation-form TXT rdata into character strings.
// Quoted segments are honored; unquoted text is a single string.
func parseTXTChunks(text string) []string {
	if !strings.Contains(text, `"`) {
		return []string{text}
	}
	var chunks []string
	for {
		start := strings.IndexByte(text, '"')
		if start < 0 {
			break
		}
		rest := text[start+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			chunks = append(chunks, rest)
			break
		}
		chunks = append(chunks, rest[:end])
		text = rest[end+1:]
	}
	return chunks
}

// ----- presentation rendering -----

// Text renders the rdata in presentation form. Malformed or unknown rdata
// falls back to a hex dump: rendering serves display and logs, never the
// wire.
func (r ResourceRecord) Text() string {
	switch r.Type {
	case TypeA, TypeAAAA:
		if addr, ok := netip.AddrFromSlice(r.Data); ok {
			return addr.String()
		}

	case TypeNS, TypeCNAME, TypePTR:
		if name, ok := dataName(r.Data, 0); ok {
			return name
		}

	case TypeMX:
		if len(r.Data) > 2 {
			if exchange, ok := dataName(r.Data, 2); ok {
				return fmt.Sprintf("%d %s", binary.BigEndian.Uint16(r.Data[0:2]), exchange)
			}
		}

	case TypeTXT:
		if s, ok := renderTXT(r.Data); ok {
			return s
		}

	case TypeSOA:
		if s, ok := renderSOA(r.Data); ok {
			return s
		}

	case TypeSRV:
		if len(r.Data) > 6 {
			if target, ok := dataName(r.Data, 6); ok {
				return fmt.Sprintf("%d %d %d %s",
					binary.BigEndian.Uint16(r.Data[0:2]),
					binary.BigEndian.Uint16(r.Data[2:4]),
					binary.BigEndian.Uint16(r.Data[4:6]),
					target)
			}
		}
	}
	return hex.EncodeToString(r.Data)
}

// TargetName returns the domain name a record points at: the nameserver for
// NS, the canonical name for CNAME, the pointer target for PTR, the exchange
// for MX, and the service host for SRV. ok is false for other types and for
// rdata too short to hold a name.
func (r ResourceRecord) TargetName() (string, bool) {
	switch r.Type {
	case TypeNS, TypeCNAME, TypePTR:
		return dataName(r.Data, 0)
	case TypeMX:
		if len(r.Data) > 2 {
			return dataName(r.Data, 2)
		}
	case TypeSRV:
		if len(r.Data) > 6 {
			return dataName(r.Data, 6)
		}
	}
	return "", false
}

// dataName decodes an uncompressed name embedded in rdata.
func dataName(data []byte, off int) (string, bool) {
	o := off
	name, err := DecodeName(data, &o)
	if err != nil {
		return "", false
	}
	return rootIfEmpty(name), true
}

func renderTXT(data []byte) (string, bool) {
	var parts []string
	for i := 0; i < len(data); {
		l := int(data[i])
		i++
		if i+l > len(data) {
			return "", false
		}
		parts = append(parts, `"`+string(data[i:i+l])+`"`)
		i += l
	}
	return strings.Join(parts, " "), true
}

func renderSOA(data []byte) (string, bool) {
	off := 0
	mname, err := DecodeName(data, &off)
	if err != nil {
		return "", false
	}
	rname, err := DecodeName(data, &off)
	if err != nil {
		return "", false
	}
	if off+20 != len(data) {
		return "", false
	}
	return fmt.Sprintf("%s %s %d %d %d %d %d",
		rootIfEmpty(mname), rootIfEmpty(rname),
		binary.BigEndian.Uint32(data[off:off+4]),
		binary.BigEndian.Uint32(data[off+4:off+8]),
		binary.BigEndian.Uint32(data[off+8:off+12]),
		binary.BigEndian.Uint32(data[off+12:off+16]),
		binary.BigEndian.Uint32(data[off+16:off+20])), true
}
