//go:build cgo

package store

// The cgo driver registers as "sqlite3" and is selected with
// database.driver: sqlite3.
import _ "github.com/mattn/go-sqlite3"
