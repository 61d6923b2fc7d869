//go:build !sqlite_cgo

package shard

// Default build: pure Go SQLite, no C compiler required. FTS5 is compiled
// in, which the forward shards depend on.
//
// Build with the cgo driver instead via:
//   CGO_ENABLED=1 go build -tags sqlite_cgo ./...

import (
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver used to open shards.
const DriverName = "sqlite"
