// Package zone parses RFC 1035 master files into resource records ready for
// the authoritative store. The parser understands $ORIGIN and $TTL directives,
// ';' comments, parenthesized record continuation, owner-name inheritance and
// relative names. Record types without a constructor in the dns package are
// skipped so zones carrying modern types still load.
package zone

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

// Zone is one parsed master file.
type Zone struct {
	Origin     string // normalized, no trailing dot
	File       string // source path, empty when parsed from text
	DefaultTTL uint32
	Records    []dns.ResourceRecord
}

// SOA returns the zone's Start of Authority record, if the file carried one
// at the apex.
func (z *Zone) SOA() (dns.ResourceRecord, bool) {
	for _, rec := range z.Records {
		if rec.Type == dns.TypeSOA && rec.Name == z.Origin {
			return rec, true
		}
	}
	return dns.ResourceRecord{}, false
}

// LoadFile reads and parses a single master file.
func LoadFile(path string) (*Zone, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	z, err := ParseText(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	z.File = path
	return z, nil
}

// DiscoverZoneFiles returns the sorted *.zone files directly under dir.
func DiscoverZoneFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".zone" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// LoadAll loads every *.zone file under dir plus the explicitly listed extra
// files, in that order. An empty dir skips discovery.
func LoadAll(dir string, extra []string) ([]*Zone, error) {
	var paths []string
	if dir != "" {
		discovered, err := DiscoverZoneFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("zone directory %s: %w", dir, err)
		}
		paths = discovered
	}
	paths = append(paths, extra...)

	zones := make([]*Zone, 0, len(paths))
	for _, path := range paths {
		z, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// ParseText parses master-file text. The $ORIGIN directive must appear before
// the first record.
func ParseText(text string) (*Zone, error) {
	lines, err := logicalLines(text)
	if err != nil {
		return nil, err
	}

	origin := ""
	defaultTTL := uint32(3600)
	lastOwner := ""
	recs := make([]dns.ResourceRecord, 0)

	for _, ln := range lines {
		line := ln.text
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "$ORIGIN"):
			parts := strings.Fields(line)
			if len(parts) != 2 {
				return nil, errors.New("$ORIGIN needs exactly one name")
			}
			origin = dns.NormalizeName(parts[1])
			continue
		case strings.HasPrefix(upper, "$TTL"):
			parts := strings.Fields(line)
			if len(parts) != 2 {
				return nil, errors.New("$TTL needs exactly one value")
			}
			ttl, err := parseTTL(parts[1])
			if err != nil {
				return nil, err
			}
			defaultTTL = ttl
			continue
		}
		if origin == "" {
			return nil, errors.New("record before $ORIGIN directive")
		}

		owner, rest, err := parseOwner(strings.Fields(line), origin, lastOwner, ln.indented)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", line, err)
		}
		lastOwner = owner

		ttl, typ, rdata, err := parseRRFields(rest, defaultTTL)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", line, err)
		}
		rt, err := dns.RecordTypeFromString(typ)
		if err != nil || rt == dns.TypeANY {
			continue // unsupported type, keep loading the rest
		}
		rec, err := buildRecord(owner, rt, ttl, rdata, origin)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", line, err)
		}
		recs = append(recs, rec)
	}

	if origin == "" {
		return nil, errors.New("zone file missing $ORIGIN")
	}
	return &Zone{Origin: origin, DefaultTTL: defaultTTL, Records: recs}, nil
}

// logicalLine is one record's worth of text after comment stripping and
// paren joining. indented remembers whether the source line began with blank
// space, which is how master files omit the owner name.
type logicalLine struct {
	text     string
	indented bool
}

// logicalLines splits text into records, joining parenthesized groups and
// dropping comments. Quoted strings shield ';', '(' and ')' so TXT rdata like
// DKIM keys survives intact.
func logicalLines(text string) ([]logicalLine, error) {
	var (
		out      []logicalLine
		group    []string
		indented bool
		depth    int
		scanner  = bufio.NewScanner(strings.NewReader(text))
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		line, delta := stripLine(raw)
		if len(group) == 0 {
			indented = len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t')
		}
		depth += delta
		if depth < 0 {
			return nil, errors.New("unbalanced ')' in zone file")
		}
		group = append(group, line)
		if depth > 0 {
			continue
		}
		joined := strings.TrimSpace(strings.Join(group, " "))
		group = group[:0]
		if joined != "" {
			out = append(out, logicalLine{text: joined, indented: indented})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if depth != 0 {
		return nil, errors.New("unbalanced '(' in zone file")
	}
	return out, nil
}

// stripLine removes the comment tail and replaces grouping parentheses with
// spaces, returning the net change in paren depth. Characters inside double
// quotes pass through untouched.
func stripLine(raw string) (string, int) {
	var b strings.Builder
	b.Grow(len(raw))
	delta := 0
	inQuote := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			b.WriteByte(c)
		case inQuote:
			b.WriteByte(c)
		case c == ';':
			return b.String(), delta
		case c == '(':
			delta++
			b.WriteByte(' ')
		case c == ')':
			delta--
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), delta
}

// qualify turns a possibly-relative name from the file into a normalized
// FQDN. "@" means the origin; names without a trailing dot are relative to it.
func qualify(name, origin string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "@" {
		return origin
	}
	if strings.HasSuffix(name, ".") {
		return dns.NormalizeName(name)
	}
	return dns.NormalizeName(name + "." + origin)
}

// parseOwner splits the owner name off the token list. A line starting with
// blank space inherits the previous owner per RFC 1035; a first token reading
// as a class or type keeps files that skip the indentation working. Purely
// numeric owners (reverse zone labels) are owners, not TTLs.
func parseOwner(tokens []string, origin, lastOwner string, indented bool) (string, []string, error) {
	if len(tokens) == 0 {
		return "", nil, errors.New("empty record")
	}
	first := tokens[0]
	if indented || looksLikeClass(first) || looksLikeType(first) {
		if lastOwner == "" {
			return "", nil, errors.New("owner name omitted on first record")
		}
		return lastOwner, tokens, nil
	}
	return qualify(first, origin), tokens[1:], nil
}

// parseRRFields consumes the optional TTL and class tokens, then the type and
// the remaining rdata text. TTL and class may appear in either order.
func parseRRFields(rest []string, defaultTTL uint32) (uint32, string, string, error) {
	var (
		haveTTL   bool
		haveClass bool
		idx       int
	)
	ttl := defaultTTL
	for idx < len(rest) {
		tok := rest[idx]
		if !haveTTL && looksLikeTTL(tok) {
			n, err := parseTTL(tok)
			if err != nil {
				return 0, "", "", err
			}
			ttl = n
			haveTTL = true
			idx++
			continue
		}
		if !haveClass && looksLikeClass(tok) {
			haveClass = true
			idx++
			continue
		}
		break
	}
	if idx >= len(rest) {
		return 0, "", "", errors.New("missing record type")
	}
	typ := strings.ToUpper(rest[idx])
	idx++
	if idx >= len(rest) {
		return 0, "", "", errors.New("missing rdata")
	}
	return ttl, typ, strings.Join(rest[idx:], " "), nil
}

// buildRecord qualifies any relative names embedded in the rdata, then hands
// construction to the dns package.
func buildRecord(owner string, rt dns.RecordType, ttl uint32, rdata, origin string) (dns.ResourceRecord, error) {
	switch rt {
	case dns.TypeCNAME, dns.TypeNS, dns.TypePTR:
		rdata = qualify(rdata, origin)
	case dns.TypeMX:
		if fields := strings.Fields(rdata); len(fields) == 2 {
			fields[1] = qualify(fields[1], origin)
			rdata = strings.Join(fields, " ")
		}
	case dns.TypeSRV:
		if fields := strings.Fields(rdata); len(fields) == 4 {
			fields[3] = qualify(fields[3], origin)
			rdata = strings.Join(fields, " ")
		}
	case dns.TypeSOA:
		return buildSOA(owner, ttl, rdata, origin)
	}
	return dns.RecordFromText(owner, rt, dns.ClassIN, ttl, rdata)
}

// buildSOA handles SOA separately because master files allow TTL-style
// suffixes (1h, 2w) on the four timer fields.
func buildSOA(owner string, ttl uint32, rdata, origin string) (dns.ResourceRecord, error) {
	parts := strings.Fields(rdata)
	if len(parts) != 7 {
		return dns.ResourceRecord{}, errors.New("SOA rdata must be: mname rname serial refresh retry expire minimum")
	}
	mname := qualify(parts[0], origin)
	rname := qualify(parts[1], origin)
	serial, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return dns.ResourceRecord{}, fmt.Errorf("invalid SOA serial %q", parts[2])
	}
	timers := make([]uint32, 4)
	for i, field := range parts[3:] {
		v, err := parseTTL(field)
		if err != nil {
			return dns.ResourceRecord{}, fmt.Errorf("invalid SOA timer %q", field)
		}
		timers[i] = v
	}
	return dns.NewSOA(owner, ttl, mname, rname, uint32(serial), timers[0], timers[1], timers[2], timers[3])
}

// ttlRE matches plain seconds and suffixed forms like 1h30m or 2w.
var ttlRE = regexp.MustCompile(`^(?:\d+[wdhmsWDHMS]?)+$`)

func looksLikeTTL(tok string) bool { return ttlRE.MatchString(tok) }

func looksLikeClass(tok string) bool { return strings.ToUpper(tok) == "IN" }

func looksLikeType(tok string) bool {
	switch strings.ToUpper(tok) {
	case "A", "AAAA", "CNAME", "NS", "SOA", "MX", "TXT", "PTR", "SRV":
		return true
	}
	return false
}

// parseTTL evaluates a TTL token. Each term is a number with an optional
// w/d/h/m/s unit; terms add up, so "1h30m" is 5400 seconds.
func parseTTL(tok string) (uint32, error) {
	if !ttlRE.MatchString(tok) {
		return 0, fmt.Errorf("invalid TTL %q", tok)
	}
	var total uint64
	num := ""
	add := func(unit byte) error {
		if num == "" {
			return nil
		}
		n, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid TTL %q", tok)
		}
		num = ""
		var mul uint64
		switch unit {
		case 's':
			mul = 1
		case 'm':
			mul = 60
		case 'h':
			mul = 3600
		case 'd':
			mul = 86400
		case 'w':
			mul = 604800
		default:
			return fmt.Errorf("invalid TTL %q", tok)
		}
		total += n * mul
		return nil
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c >= '0' && c <= '9' {
			num += string(c)
			continue
		}
		if err := add(c | 0x20); err != nil { // lowercase the unit
			return 0, err
		}
	}
	if err := add('s'); err != nil {
		return 0, err
	}
	if total > uint64(^uint32(0)) {
		return 0, fmt.Errorf("TTL %q overflows 32 bits", tok)
	}
	return uint32(total), nil
}
