package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// Runs lists runs, newest first.
func (s *SQLiteIndex) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id,pack,pack_regions,defs_digest,kinds,planes,started_at,finished_at,chunks FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r             Run
			kinds, planes string
			started       string
			finished      sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Pack, &r.PackRegions, &r.DefsDigest, &kinds, &planes, &started, &finished, &r.Chunks); err != nil {
			return nil, err
		}
		if kinds != "" {
			r.Kinds = strings.Split(kinds, ",")
		}
		_ = json.Unmarshal([]byte(planes), &r.Planes)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Chunks returns the chunk rows of one run, kind and plane in region order.
func (s *SQLiteIndex) Chunks(ctx context.Context, runID, kind string, plane int) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry,region_x,region_y,hash,bytes,empty FROM chunks WHERE run_id=? AND kind=? AND plane=? ORDER BY region_x, region_y`,
		runID, kind, plane)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		c := Chunk{RunID: runID, Kind: kind, Plane: plane}
		var empty int
		if err := rows.Scan(&c.Entry, &c.RegionX, &c.RegionY, &c.Hash, &c.Bytes, &empty); err != nil {
			return nil, err
		}
		c.Empty = empty != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// ObjectLocation is one object record found by name.
type ObjectLocation struct {
	Plane       int
	ID          int
	Name        string
	Coordinates [][2]int
}

// FindObjects looks up records of a run by exact, case-insensitive name.
func (s *SQLiteIndex) FindObjects(ctx context.Context, runID, name string) ([]ObjectLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plane,object_id,name,coordinates FROM objects WHERE run_id=? AND name=? COLLATE NOCASE ORDER BY plane, object_id`,
		runID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ObjectLocation
	for rows.Next() {
		var (
			o      ObjectLocation
			coords string
		)
		if err := rows.Scan(&o.Plane, &o.ID, &o.Name, &coords); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(coords), &o.Coordinates); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
