package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

func main() {
	var (
		server   = flag.String("server", "127.0.0.1:53", "DNS server HOST:PORT")
		name     = flag.String("name", "example.com", "Query name")
		qtype    = flag.String("type", "A", "Query type (A, AAAA, CNAME, MX, ...)")
		timeout  = flag.Duration("timeout", 2*time.Second, "Timeout")
		recvSize = flag.Int("recv-size", 2048, "UDP receive buffer size")
		quiet    = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Parse()

	rt, err := dns.RecordTypeFromString(*qtype)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnsquery error: %v\n", err)
		os.Exit(2)
	}

	resp, err := queryUDP(*server, *name, rt, *timeout, *recvSize)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "dnsquery error: %v\n", err)
		}
		os.Exit(1)
	}
	if *quiet {
		return
	}

	m, err := dns.ParseMessage(resp)
	if err != nil {
		fmt.Printf("received %d bytes (unparseable)\n", len(resp))
		return
	}

	fmt.Printf("id=%d rcode=%s answers=%d authorities=%d additionals=%d\n",
		m.Header.ID,
		m.RCode(),
		len(m.Answers),
		len(m.Authorities),
		len(m.Additionals),
	)

	printSection("ANSWER", m.Answers)
	printSection("AUTHORITY", m.Authorities)
	printSection("ADDITIONAL", m.Additionals)
}

func queryUDP(server, name string, rt dns.RecordType, timeout time.Duration, recvSize int) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name required")
	}
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, err
	}
	c, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	id := uint16(time.Now().UnixNano())
	if id == 0 {
		id = 0x1234
	}
	req, err := dns.BuildQuery(id, dns.NormalizeName(name), rt, dns.ClassIN, true).Marshal()
	if err != nil {
		return nil, err
	}
	_ = c.SetDeadline(time.Now().Add(timeout))
	if _, err := c.Write(req); err != nil {
		return nil, err
	}
	buf := make([]byte, recvSize)
	n, err := c.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func printSection(label string, recs []dns.ResourceRecord) {
	if len(recs) == 0 {
		return
	}
	fmt.Printf(";; %s\n", label)
	rows := make([]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, formatRR(rec))
	}
	sort.Strings(rows)
	for _, s := range rows {
		fmt.Println(s)
	}
}

func formatRR(rec dns.ResourceRecord) string {
	name := rec.Name
	if name == "" {
		name = "."
	}
	return fmt.Sprintf("%s %d %s %s %s", name, rec.TTL, rec.Class, rec.Type, rec.Text())
}
