//go:build sqlite_cgo

package shard

// cgo build: the mattn driver links against the system SQLite, which is
// noticeably faster on large shards. Requires FTS5 support:
//   CGO_ENABLED=1 go build -tags "sqlite_cgo sqlite_fts5" ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver used to open shards.
const DriverName = "sqlite3"
