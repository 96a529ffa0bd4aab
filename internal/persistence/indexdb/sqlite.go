// Package indexdb keeps a queryable SQLite index of export runs: the
// catalogs they used, every chunk they wrote and the object records per plane.
// The manifest stays the source of truth; the index may drop rows when its
// writer falls behind.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"regionatlas.dev/internal/atlas/objects"
)

type SQLiteIndex struct {
	db *sql.DB

	ch          chan req
	wg          sync.WaitGroup
	once        sync.Once
	enqueueWait time.Duration

	closed atomic.Bool

	dropChunk  atomic.Uint64
	dropObject atomic.Uint64
}

type reqKind int

const (
	reqChunk reqKind = iota + 1
	reqObject
	reqFinish
	reqFlush
)

type req struct {
	kind reqKind

	chunk  Chunk
	object objectRow
	finish finishRow
	done   chan struct{}
}

type Run struct {
	ID          string
	Pack        string
	PackRegions int
	DefsDigest  string
	Kinds       []string
	Planes      []int
	StartedAt   time.Time
	FinishedAt  time.Time
	Chunks      int
}

type Chunk struct {
	RunID   string
	Kind    string
	Plane   int
	RegionX int
	RegionY int
	Entry   string
	Hash    string
	Bytes   int
	Empty   bool
}

type objectRow struct {
	RunID  string
	Plane  int
	Record objects.Record
}

type finishRow struct {
	RunID      string
	FinishedAt time.Time
	Chunks     int
}

type Stats struct {
	QueueDepth      int
	QueueCapacity   int
	DropChunkTotal  uint64
	DropObjectTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:          db,
		ch:          make(chan req, 65536),
		enqueueWait: 2 * time.Second,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES('schema_version','1');`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			pack TEXT NOT NULL,
			pack_regions INTEGER NOT NULL,
			defs_digest TEXT NOT NULL,
			kinds TEXT NOT NULL,
			planes TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			chunks INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			kind TEXT NOT NULL,
			plane INTEGER NOT NULL,
			region_x INTEGER NOT NULL,
			region_y INTEGER NOT NULL,
			entry TEXT NOT NULL,
			hash TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			empty INTEGER NOT NULL,
			PRIMARY KEY(run_id, kind, plane, region_x, region_y)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(hash);`,
		`CREATE TABLE IF NOT EXISTS objects (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			plane INTEGER NOT NULL,
			object_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			category INTEGER NOT NULL,
			coordinates TEXT NOT NULL,
			PRIMARY KEY(run_id, plane, object_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_objects_name ON objects(name);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains queued rows and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// BeginRun records a run synchronously so later rows can reference it.
func (s *SQLiteIndex) BeginRun(ctx context.Context, r Run) error {
	if s == nil {
		return nil
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	planes, _ := json.Marshal(r.Planes)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(run_id,pack,pack_regions,defs_digest,kinds,planes,started_at) VALUES(?,?,?,?,?,?,?)`,
		r.ID, r.Pack, r.PackRegions, r.DefsDigest, strings.Join(r.Kinds, ","), string(planes),
		r.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun is queued behind the run's chunk rows.
func (s *SQLiteIndex) FinishRun(runID string, chunks int) {
	if s == nil || s.closed.Load() {
		return
	}
	s.ch <- req{kind: reqFinish, finish: finishRow{RunID: runID, FinishedAt: time.Now(), Chunks: chunks}}
}

func (s *SQLiteIndex) RecordChunk(c Chunk) {
	if s == nil || s.closed.Load() {
		return
	}
	if !s.enqueue(req{kind: reqChunk, chunk: c}) {
		s.dropChunk.Add(1)
	}
}

func (s *SQLiteIndex) RecordObjects(runID string, plane int, recs []objects.Record) {
	if s == nil || s.closed.Load() {
		return
	}
	for _, rec := range recs {
		if !s.enqueue(req{kind: reqObject, object: objectRow{RunID: runID, Plane: plane, Record: rec}}) {
			s.dropObject.Add(1)
		}
	}
}

// Flush blocks until every row queued so far is committed.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqFlush, done: done}
	<-done
}

func (s *SQLiteIndex) enqueue(r req) bool {
	select {
	case s.ch <- r:
		return true
	default:
	}
	if s.enqueueWait <= 0 {
		return false
	}
	t := time.NewTimer(s.enqueueWait)
	defer t.Stop()
	select {
	case s.ch <- r:
		return true
	case <-t.C:
		return false
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropChunkTotal:  s.dropChunk.Load(),
		DropObjectTotal: s.dropObject.Load(),
	}
}

// UpsertCatalogs stores the raw catalog files read from dir under their
// digests, keyed by file name.
func (s *SQLiteIndex) UpsertCatalogs(ctx context.Context, dir string, digests map[string]string) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if _, err := stmt.ExecContext(ctx, name, digests[name], string(b), now); err != nil {
			return fmt.Errorf("catalog %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertChunk, _ := s.db.Prepare(`INSERT OR REPLACE INTO chunks(run_id,kind,plane,region_x,region_y,entry,hash,bytes,empty) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertObject, _ := s.db.Prepare(`INSERT OR REPLACE INTO objects(run_id,plane,object_id,name,category,coordinates) VALUES(?,?,?,?,?,?)`)
	updateRun, _ := s.db.Prepare(`UPDATE runs SET finished_at=?, chunks=? WHERE run_id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertChunk, insertObject, updateRun} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	// An idle writer must not hold the only connection open in a transaction.
	ticker := time.NewTicker(commitMaxWait)
	defer ticker.Stop()

	for {
		var (
			r  req
			ok bool
		)
		select {
		case r, ok = <-s.ch:
		case <-ticker.C:
			commit()
			continue
		}
		if !ok {
			break
		}

		switch r.kind {
		case reqFlush:
			commit()
			close(r.done)
			continue
		case reqChunk:
			begin()
			c := r.chunk
			exec(insertChunk, c.RunID, c.Kind, c.Plane, c.RegionX, c.RegionY, c.Entry, c.Hash, c.Bytes, boolInt(c.Empty))
		case reqObject:
			begin()
			o := r.object
			coords, _ := json.Marshal(o.Record.Coordinates)
			exec(insertObject, o.RunID, o.Plane, o.Record.ID, o.Record.Name, o.Record.Category, string(coords))
		case reqFinish:
			begin()
			f := r.finish
			exec(updateRun, f.FinishedAt.UTC().Format(time.RFC3339Nano), f.Chunks, f.RunID)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
