package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

// ErrNotFound reports that no row matched the request.
var ErrNotFound = errors.New("record not found")

// Record is one row of the records table. RData is in presentation form:
// "192.0.2.1", "10 mail.example.com", a quoted TXT string.
type Record struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Class string `json:"class"`
	TTL   uint32 `json:"ttl"`
	RData string `json:"rdata"`
}

// ResourceRecord converts the row back into a wire-ready record.
func (r Record) ResourceRecord() (dns.ResourceRecord, error) {
	rt, err := dns.RecordTypeFromString(r.Type)
	if err != nil {
		return dns.ResourceRecord{}, err
	}
	class := dns.ClassIN
	if r.Class != "" {
		class, err = dns.RecordClassFromString(r.Class)
		if err != nil {
			return dns.ResourceRecord{}, err
		}
	}
	return dns.RecordFromText(r.Name, rt, class, r.TTL, r.RData)
}

// AddRecord persists a record, updating the TTL if an identical
// name/type/rdata row already exists. The stored row is returned with its ID.
func (db *DB) AddRecord(rec dns.ResourceRecord) (Record, error) {
	row := Record{
		Name:  rec.Name,
		Type:  rec.Type.String(),
		Class: rec.Class.String(),
		TTL:   rec.TTL,
		RData: rec.Text(),
	}

	query := `
		INSERT INTO records (name, type, class, ttl, rdata, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name, type, rdata) DO UPDATE SET
			ttl = excluded.ttl,
			class = excluded.class,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`
	err := db.conn.QueryRow(query, row.Name, row.Type, row.Class, row.TTL, row.RData).Scan(&row.ID)
	if err != nil {
		return Record{}, fmt.Errorf("add record %s %s: %w", row.Name, row.Type, err)
	}
	return row, nil
}

// Records returns every stored record, ordered for stable listings.
func (db *DB) Records() ([]Record, error) {
	return db.queryRecords(`
		SELECT id, name, type, class, ttl, rdata
		FROM records
		ORDER BY name, type, rdata
	`)
}

// RecordsFor returns the records stored under a name.
func (db *DB) RecordsFor(name string) ([]Record, error) {
	return db.queryRecords(`
		SELECT id, name, type, class, ttl, rdata
		FROM records
		WHERE name = ?
		ORDER BY type, rdata
	`, dns.NormalizeName(name))
}

func (db *DB) queryRecords(query string, args ...any) ([]Record, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.Class, &r.TTL, &r.RData); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// DeleteRecord removes a record by ID and returns the deleted row so the
// caller can evict it from the live store.
func (db *DB) DeleteRecord(id int64) (Record, error) {
	var r Record
	err := db.conn.QueryRow(`
		DELETE FROM records
		WHERE id = ?
		RETURNING id, name, type, class, ttl, rdata
	`, id).Scan(&r.ID, &r.Name, &r.Type, &r.Class, &r.TTL, &r.RData)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("delete record %d: %w", id, err)
	}
	return r, nil
}

// AllResourceRecords converts every stored row for loading into the
// authoritative store at startup.
func (db *DB) AllResourceRecords() ([]dns.ResourceRecord, error) {
	rows, err := db.Records()
	if err != nil {
		return nil, err
	}
	out := make([]dns.ResourceRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.ResourceRecord()
		if err != nil {
			return nil, fmt.Errorf("record %d (%s %s): %w", row.ID, row.Name, row.Type, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
