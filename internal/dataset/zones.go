package dataset

import (
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

//go:embed zones.csv
var zonesCSV string

// Zone is one row of the zone lookup table.
type Zone struct {
	LocationID  int64
	ZoneName    string
	Borough     string
	ServiceZone string
}

// SeedZones loads the embedded zone lookup into the zones table.
// Existing rows with the same location_id are replaced, so reseeding is
// idempotent. Returns the number of zones written.
func (d *DB) SeedZones(ctx context.Context) (int, error) {
	zones, err := parseZonesCSV(strings.NewReader(zonesCSV))
	if err != nil {
		return 0, fmt.Errorf("embedded zone lookup: %w", err)
	}
	return d.writeZones(ctx, zones)
}

// ImportZonesCSV loads a TLC-format zone lookup CSV
// (LocationID,Borough,Zone,service_zone) from the given path.
// Column order is taken from the header, so reordered exports work too.
func (d *DB) ImportZonesCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open zone lookup: %w", err)
	}
	defer f.Close()

	zones, err := parseZonesCSV(f)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return d.writeZones(ctx, zones)
}

// writeZones replaces zone rows inside a single transaction.
func (d *DB) writeZones(ctx context.Context, zones []Zone) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO zones (location_id, zone_name, borough, service_zone)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, z := range zones {
		if _, err := stmt.ExecContext(ctx, z.LocationID, z.ZoneName, z.Borough, z.ServiceZone); err != nil {
			return 0, fmt.Errorf("insert zone %d: %w", z.LocationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit zones: %w", err)
	}
	return len(zones), nil
}

// ZoneIDs returns all location ids present in the zones table, ascending.
func (d *DB) ZoneIDs(ctx context.Context) ([]int64, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT location_id FROM zones ORDER BY location_id ASC")
	if err != nil {
		return nil, fmt.Errorf("query zone ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan zone id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// parseZonesCSV reads a zone lookup in TLC CSV format. The header row is
// required; column names are matched case-insensitively.
func parseZonesCSV(r io.Reader) ([]Zone, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"locationid", "borough", "zone"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q in header %v", required, header)
		}
	}

	var zones []Zone
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line++

		id, err := strconv.ParseInt(strings.TrimSpace(record[idx["locationid"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad LocationID %q", line, record[idx["locationid"]])
		}

		z := Zone{
			LocationID: id,
			ZoneName:   strings.TrimSpace(record[idx["zone"]]),
			Borough:    strings.TrimSpace(record[idx["borough"]]),
		}
		if col, ok := idx["service_zone"]; ok && col < len(record) {
			z.ServiceZone = strings.TrimSpace(record[col])
		}
		if z.ZoneName == "" {
			return nil, fmt.Errorf("line %d: empty zone name for location %d", line, id)
		}
		zones = append(zones, z)
	}

	if len(zones) == 0 {
		return nil, fmt.Errorf("no zone rows found")
	}
	return zones, nil
}
