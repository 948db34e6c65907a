package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/zone"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: zonedump path/to/zonefile\n")
		os.Exit(2)
	}
	path := flag.Arg(0)
	z, err := zone.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load zone: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ORIGIN: %s\n", z.Origin)
	fmt.Printf("DEFAULT_TTL: %d\n", z.DefaultTTL)
	fmt.Println("RECORDS:")

	recs := append([]dns.ResourceRecord(nil), z.Records...)
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.TTL != b.TTL {
			return a.TTL < b.TTL
		}
		return a.Text() < b.Text()
	})

	for _, rec := range recs {
		fmt.Printf("  %s %d %s %s %s\n", rec.Name, rec.TTL, rec.Class, rec.Type, rec.Text())
	}
}
