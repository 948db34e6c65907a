package zone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

func recordsFor(z *Zone, name string, rt dns.RecordType) []dns.ResourceRecord {
	var out []dns.ResourceRecord
	for _, rec := range z.Records {
		if rec.Name == dns.NormalizeName(name) && rec.Type == rt {
			out = append(out, rec)
		}
	}
	return out
}

func TestParseZoneBasic(t *testing.T) {
	z, err := ParseText("$ORIGIN example.com.\n$TTL 3600\n@ IN A 192.0.2.1\n")
	require.NoError(t, err)
	assert.Equal(t, "example.com", z.Origin)
	assert.Equal(t, uint32(3600), z.DefaultTTL)

	rrs := recordsFor(z, "example.com", dns.TypeA)
	require.Len(t, rrs, 1)
	assert.Equal(t, "192.0.2.1", rrs[0].Text())
	assert.Equal(t, uint32(3600), rrs[0].TTL)
	assert.Equal(t, dns.ClassIN, rrs[0].Class)
}

func TestParseZoneMultipleRecords(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@    IN  A     192.0.2.1
@    IN  A     192.0.2.2
www  IN  A     192.0.2.3
mail IN  MX    10 mail.example.com.
`)
	require.NoError(t, err)

	assert.Len(t, recordsFor(z, "example.com", dns.TypeA), 2, "expected 2 A records at apex")
	assert.Len(t, recordsFor(z, "www.example.com", dns.TypeA), 1)

	mxs := recordsFor(z, "mail.example.com", dns.TypeMX)
	require.Len(t, mxs, 1)
	assert.Equal(t, "10 mail.example.com", mxs[0].Text())
}

func TestParseZoneRelativeTargets(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@    IN  MX     10 mail
www  IN  CNAME  @
ftp  IN  CNAME  files
`)
	require.NoError(t, err)

	mxs := recordsFor(z, "example.com", dns.TypeMX)
	require.Len(t, mxs, 1)
	target, ok := mxs[0].TargetName()
	require.True(t, ok)
	assert.Equal(t, "mail.example.com", target, "relative exchange should be qualified")

	cnames := recordsFor(z, "www.example.com", dns.TypeCNAME)
	require.Len(t, cnames, 1)
	target, ok = cnames[0].TargetName()
	require.True(t, ok)
	assert.Equal(t, "example.com", target, "@ target should mean the origin")

	cnames = recordsFor(z, "ftp.example.com", dns.TypeCNAME)
	require.Len(t, cnames, 1)
	target, _ = cnames[0].TargetName()
	assert.Equal(t, "files.example.com", target)
}

func TestParseZoneWithNS(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@  IN  NS  ns1.example.com.
@  IN  NS  ns2.example.com.
`)
	require.NoError(t, err)
	assert.Len(t, recordsFor(z, "example.com", dns.TypeNS), 2)
}

func TestParseZoneWithSOA(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@  IN  SOA  ns1.example.com. admin.example.com. 2024010101 3600 900 604800 86400
`)
	require.NoError(t, err)

	soa, ok := z.SOA()
	require.True(t, ok, "expected SOA record at apex")
	assert.Equal(t, "ns1.example.com admin.example.com 2024010101 3600 900 604800 86400", soa.Text())
}

func TestParseZoneParenthesizedSOA(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@ IN SOA ns1 admin (
    2024010101 ; serial
    1h         ; refresh
    15m        ; retry
    1w         ; expire
    1d )       ; minimum
`)
	require.NoError(t, err)

	soa, ok := z.SOA()
	require.True(t, ok)
	assert.Equal(t, "ns1.example.com admin.example.com 2024010101 3600 900 604800 86400", soa.Text())
}

func TestParseZoneWithAAAA(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@  IN  AAAA  2001:db8::1
`)
	require.NoError(t, err)

	rrs := recordsFor(z, "example.com", dns.TypeAAAA)
	require.Len(t, rrs, 1)
	assert.Equal(t, "2001:db8::1", rrs[0].Text())
}

func TestParseZoneWithTXT(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@  IN  TXT  "v=spf1 include:_spf.example.com ~all"
`)
	require.NoError(t, err)

	rrs := recordsFor(z, "example.com", dns.TypeTXT)
	require.Len(t, rrs, 1)
	assert.Equal(t, `"v=spf1 include:_spf.example.com ~all"`, rrs[0].Text())
}

func TestParseZoneTXTKeepsQuotedSemicolons(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
selector._domainkey IN TXT "v=DKIM1; k=rsa; p=MIGfMA0G" ; trailing comment
`)
	require.NoError(t, err)

	rrs := recordsFor(z, "selector._domainkey.example.com", dns.TypeTXT)
	require.Len(t, rrs, 1)
	assert.Equal(t, `"v=DKIM1; k=rsa; p=MIGfMA0G"`, rrs[0].Text())
}

func TestParseZoneWithSRV(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
_sip._tcp  IN  SRV  10 60 5060 sipserver
`)
	require.NoError(t, err)

	rrs := recordsFor(z, "_sip._tcp.example.com", dns.TypeSRV)
	require.Len(t, rrs, 1)
	assert.Equal(t, "10 60 5060 sipserver.example.com", rrs[0].Text())
}

func TestParseZoneWithPTR(t *testing.T) {
	z, err := ParseText(`
$ORIGIN 2.0.192.in-addr.arpa.
$TTL 3600
1  IN  PTR  www.example.com.
`)
	require.NoError(t, err)

	rrs := recordsFor(z, "1.2.0.192.in-addr.arpa", dns.TypePTR)
	require.Len(t, rrs, 1)
	assert.Equal(t, "www.example.com", rrs[0].Text())
}

func TestParseZoneOwnerInheritance(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
www  IN  A     192.0.2.1
     IN  A     192.0.2.2
     IN  AAAA  2001:db8::1
`)
	require.NoError(t, err)

	assert.Len(t, recordsFor(z, "www.example.com", dns.TypeA), 2)
	assert.Len(t, recordsFor(z, "www.example.com", dns.TypeAAAA), 1)
}

func TestParseZoneExplicitTTL(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
fast  60    IN  A  192.0.2.1
slow  1h30m IN  A  192.0.2.2
`)
	require.NoError(t, err)

	fast := recordsFor(z, "fast.example.com", dns.TypeA)
	require.Len(t, fast, 1)
	assert.Equal(t, uint32(60), fast[0].TTL)

	slow := recordsFor(z, "slow.example.com", dns.TypeA)
	require.Len(t, slow, 1)
	assert.Equal(t, uint32(5400), slow[0].TTL)
}

func TestParseZoneComments(t *testing.T) {
	z, err := ParseText(`
; This is a comment
$ORIGIN example.com.
$TTL 3600
@  IN  A  192.0.2.1  ; inline comment
`)
	require.NoError(t, err)
	assert.Len(t, recordsFor(z, "example.com", dns.TypeA), 1)
}

func TestParseZoneSkipsUnsupportedTypes(t *testing.T) {
	z, err := ParseText(`
$ORIGIN example.com.
$TTL 3600
@  IN  NAPTR  100 10 "S" "SIP+D2U" "" _sip._udp.example.com.
@  IN  A      192.0.2.1
`)
	require.NoError(t, err)
	require.Len(t, z.Records, 1, "unsupported types should be skipped, not fatal")
	assert.Equal(t, dns.TypeA, z.Records[0].Type)
}

func TestParseZoneNoOrigin(t *testing.T) {
	_, err := ParseText(`
$TTL 3600
@  IN  A  192.0.2.1
`)
	assert.Error(t, err, "expected error for zone without origin")
}

func TestParseZoneBadAddress(t *testing.T) {
	_, err := ParseText(`
$ORIGIN example.com.
@  IN  A  not-an-address
`)
	assert.Error(t, err)
}

func TestParseZoneAddressFamilyMismatch(t *testing.T) {
	_, err := ParseText(`
$ORIGIN example.com.
@  IN  A  2001:db8::1
`)
	assert.Error(t, err, "IPv6 rdata on an A record should fail")
}

func TestParseZoneUnbalancedParens(t *testing.T) {
	_, err := ParseText(`
$ORIGIN example.com.
@ IN SOA ns1 admin ( 1 2 3 4 5
`)
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"0", 0},
		{"300", 300},
		{"30s", 30},
		{"5m", 300},
		{"2h", 7200},
		{"1d", 86400},
		{"2w", 1209600},
		{"1h30m", 5400},
		{"1w1d1h1m1s", 694861},
	}
	for _, tt := range tests {
		got, err := parseTTL(tt.in)
		require.NoError(t, err, "parseTTL(%q)", tt.in)
		assert.Equal(t, tt.want, got, "parseTTL(%q)", tt.in)
	}

	for _, bad := range []string{"", "abc", "1x", "-5", "99999999999999999999s"} {
		_, err := parseTTL(bad)
		assert.Error(t, err, "parseTTL(%q) should fail", bad)
	}
}

func TestLoadFile(t *testing.T) {
	content := `
$ORIGIN test.local.
$TTL 300
@  IN  A  10.0.0.1
`
	path := filepath.Join(t.TempDir(), "test.zone")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	z, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test.local", z.Origin)
	assert.Equal(t, path, z.File)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/to/zone.file")
	assert.Error(t, err)
}

func TestLoadFileBadContentNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zone")
	require.NoError(t, os.WriteFile(path, []byte("@ IN A 1.2.3.4\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.zone")
}

func TestDiscoverZoneFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.zone"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.zone"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(""), 0o644))

	files, err := DiscoverZoneFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2, "only .zone files should be discovered")
	assert.Equal(t, filepath.Join(dir, "alpha.zone"), files[0])
	assert.Equal(t, filepath.Join(dir, "beta.zone"), files[1])
}

func TestDiscoverZoneFilesNonexistentDir(t *testing.T) {
	files, err := DiscoverZoneFiles("/nonexistent/directory")
	assert.Error(t, err)
	assert.Empty(t, files)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	zoneA := "$ORIGIN a.test.\n$TTL 60\n@ IN A 10.0.0.1\n"
	zoneB := "$ORIGIN b.test.\n$TTL 60\n@ IN A 10.0.0.2\n"
	extra := "$ORIGIN c.test.\n$TTL 60\n@ IN A 10.0.0.3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.zone"), []byte(zoneA), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.zone"), []byte(zoneB), 0o644))
	extraPath := filepath.Join(t.TempDir(), "c.extra")
	require.NoError(t, os.WriteFile(extraPath, []byte(extra), 0o644))

	zones, err := LoadAll(dir, []string{extraPath})
	require.NoError(t, err)
	require.Len(t, zones, 3)
	assert.Equal(t, "a.test", zones[0].Origin)
	assert.Equal(t, "b.test", zones[1].Origin)
	assert.Equal(t, "c.test", zones[2].Origin)
}

func TestLoadAllEmptyDirSkipsDiscovery(t *testing.T) {
	zones, err := LoadAll("", nil)
	require.NoError(t, err)
	assert.Empty(t, zones)
}
