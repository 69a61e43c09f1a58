// Package store provides the record table behind the batch runner.
//
// A record is one row of a configurable table (by default the
// dokumente(ID, name, inhalt, kodiert) layout) holding a text payload and a
// state flag: 0 = plain, 1 = obfuscated.
//
// Two drivers are supported through database/sql:
//   - sqlite3 (github.com/mattn/go-sqlite3) for local copies and tests
//   - mysql (github.com/go-sql-driver/mysql) for production databases
//
// # Guarantees
//
//   - Fetch returns records ordered by id so runs process rows deterministically.
//   - Rows with NULL or empty content are never returned.
//   - Update changes content and flag of exactly one row inside a transaction.
//
// # SQLite configuration
//
//   - WAL mode, synchronous=NORMAL, busy_timeout=5000
//   - a single open connection (SQLite allows one writer)
package store
