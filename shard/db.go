package shard

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// sqliteMagic is the 16-byte header every SQLite database file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// zstdMagic is the zstandard frame header; shard payloads may be published
// compressed and are decompressed transparently on load.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// CorruptError indicates a shard payload that cannot be opened as a valid
// database, or rows that do not match the expected schema.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type CorruptError struct {
	Shard string
	cause error
}

func (e *CorruptError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("corrupt shard %s", e.Shard)
	}
	return fmt.Sprintf("corrupt shard %s: %v", e.Shard, e.cause)
}

func (e *CorruptError) Unwrap() error { return e.cause }

// Row is one forward-index record joined with its full-text relevance.
type Row struct {
	GERSID        string
	Type          string
	Name          string
	Lat           float64
	Lon           float64
	BBoxXMin      float64
	BBoxYMin      float64
	BBoxXMax      float64
	BBoxYMax      float64
	Population    int64
	HasPopulation bool
	Country       string
	Region        string
	BM25          float64
}

// ReverseRow is one reverse-index record whose bounding box contains the
// query point. Area is bbox width × height in coordinate units, a
// specificity proxy rather than true geographic area.
type ReverseRow struct {
	GERSID        string
	Subtype       string
	Name          string
	Lat           float64
	Lon           float64
	BBoxXMin      float64
	BBoxYMin      float64
	BBoxXMax      float64
	BBoxYMax      float64
	Area          float64
	Population    int64
	HasPopulation bool
	Country       string
	Region        string
}

// DB is a read-only handle to one opened shard.
//
// Handles are reference-counted: the opener (a Store's cache, or the
// direct caller of Open/OpenBytes) holds the owning reference, and
// Store.Load adds one per borrower. The underlying database closes only
// when the owner and every borrower have let go, so a cache eviction
// cannot yank a handle out from under an in-flight query.
type DB struct {
	id   string
	db   *sql.DB
	path string
	temp bool

	mu   sync.Mutex
	refs int
}

const searchSQL = `
	SELECT
		f.gers_id,
		f.type,
		f.primary_name,
		f.lat,
		f.lon,
		f.bbox_xmin,
		f.bbox_ymin,
		f.bbox_xmax,
		f.bbox_ymax,
		f.population,
		f.country,
		f.region,
		bm25(features_fts) AS bm25_score
	FROM features_fts
	JOIN features f ON features_fts.rowid = f.rowid
	WHERE features_fts MATCH ?
	ORDER BY bm25_score
	LIMIT ?`

const reverseSQL = `
	SELECT
		gers_id,
		subtype,
		primary_name,
		lat,
		lon,
		bbox_xmin,
		bbox_ymin,
		bbox_xmax,
		bbox_ymax,
		area,
		population,
		country,
		region
	FROM divisions_reverse
	WHERE bbox_xmin <= ?1
	  AND bbox_xmax >= ?1
	  AND bbox_ymin <= ?2
	  AND bbox_ymax >= ?2
	ORDER BY area ASC
	LIMIT ?3`

// Open opens a shard database file read-only.
func Open(path, id string) (*DB, error) {
	db, err := sql.Open(DriverName, "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, &CorruptError{Shard: id, cause: err}
	}

	// Shards are read-only; a single connection avoids page-cache
	// duplication across the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA cache_size = -64000; PRAGMA temp_store = MEMORY;"); err != nil {
		_ = db.Close()
		return nil, &CorruptError{Shard: id, cause: err}
	}

	return &DB{id: id, db: db, path: path, refs: 1}, nil
}

// OpenBytes opens a shard from its raw payload: zstd-compressed payloads
// are decompressed, the SQLite header is validated, and the database is
// materialized to a temp file and opened read-only.
func OpenBytes(data []byte, id string) (*DB, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()

		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, &CorruptError{Shard: id, cause: fmt.Errorf("zstd: %w", err)}
		}
	}

	if !bytes.HasPrefix(data, sqliteMagic) {
		return nil, &CorruptError{Shard: id, cause: fmt.Errorf("not a sqlite database (%d bytes)", len(data))}
	}

	f, err := os.CreateTemp("", "geocoder-shard-*.db")
	if err != nil {
		return nil, err
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	db, err := Open(tmpPath, id)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	db.temp = true
	return db, nil
}

// ID returns the shard identifier this handle was opened for.
func (d *DB) ID() string { return d.id }

// Search executes a ranked full-text query. match must be a non-empty
// FTS5 MATCH expression; rows come back ascending by raw BM25 score
// (best textual match first), before any population boost.
func (d *DB) Search(ctx context.Context, match string, limit int) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx, searchSQL, match, limit)
	if err != nil {
		return nil, &CorruptError{Shard: d.id, cause: err}
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r          Row
			population sql.NullInt64
			country    sql.NullString
			region     sql.NullString
		)
		if err := rows.Scan(
			&r.GERSID, &r.Type, &r.Name, &r.Lat, &r.Lon,
			&r.BBoxXMin, &r.BBoxYMin, &r.BBoxXMax, &r.BBoxYMax,
			&population, &country, &region, &r.BM25,
		); err != nil {
			return nil, &CorruptError{Shard: d.id, cause: err}
		}
		r.Population, r.HasPopulation = population.Int64, population.Valid
		r.Country = country.String
		r.Region = region.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &CorruptError{Shard: d.id, cause: err}
	}

	return out, nil
}

// Reverse returns the records whose bounding box contains (lat, lon),
// ascending by area (most specific first), capped at limit.
func (d *DB) Reverse(ctx context.Context, lat, lon float64, limit int) ([]ReverseRow, error) {
	rows, err := d.db.QueryContext(ctx, reverseSQL, lon, lat, limit)
	if err != nil {
		return nil, &CorruptError{Shard: d.id, cause: err}
	}
	defer rows.Close()

	var out []ReverseRow
	for rows.Next() {
		var (
			r          ReverseRow
			area       sql.NullFloat64
			population sql.NullInt64
			country    sql.NullString
			region     sql.NullString
		)
		if err := rows.Scan(
			&r.GERSID, &r.Subtype, &r.Name, &r.Lat, &r.Lon,
			&r.BBoxXMin, &r.BBoxYMin, &r.BBoxXMax, &r.BBoxYMax,
			&area, &population, &country, &region,
		); err != nil {
			return nil, &CorruptError{Shard: d.id, cause: err}
		}
		r.Area = area.Float64
		r.Population, r.HasPopulation = population.Int64, population.Valid
		r.Country = country.String
		r.Region = region.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &CorruptError{Shard: d.id, cause: err}
	}

	return out, nil
}

// Count returns the number of records in the shard, whichever of the
// forward or reverse table it carries.
func (d *DB) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM features").Scan(&n); err == nil {
		return n, nil
	}
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM divisions_reverse").Scan(&n); err != nil {
		return 0, &CorruptError{Shard: d.id, cause: err}
	}
	return n, nil
}

// Metadata returns the value for a key from the shard's metadata table
// (e.g. the source release version), or false when the key is absent.
func (d *DB) Metadata(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &CorruptError{Shard: d.id, cause: err}
	}
	return value, true, nil
}

// acquire adds a borrower reference to a handle we already hold.
func (d *DB) acquire() {
	d.mu.Lock()
	d.refs++
	d.mu.Unlock()
}

// tryAcquire adds a borrower reference, failing when the owner already
// let go and the handle is gone.
func (d *DB) tryAcquire() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refs == 0 {
		return false
	}
	d.refs++
	return true
}

// Release returns a handle borrowed from a Store. After Release the
// handle must not be used.
func (d *DB) Release() {
	_ = d.decref()
}

// Close drops the owning reference. The database handle and any
// materialized temp file are released once no borrowers remain.
func (d *DB) Close() error {
	return d.decref()
}

func (d *DB) decref() error {
	d.mu.Lock()
	d.refs--
	last := d.refs == 0
	d.mu.Unlock()

	if !last {
		return nil
	}

	err := d.db.Close()
	if d.temp {
		if rmErr := os.Remove(d.path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
