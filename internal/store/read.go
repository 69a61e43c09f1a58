package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Record is one row of the record table.
type Record struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Content    string `json:"-"`
	Obfuscated bool   `json:"obfuscated"`
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Fetch returns every record whose state flag equals obfuscated, ordered by id.
// Rows with NULL or empty content are skipped.
//
// Returns an empty slice (not nil) if no record matches.
func (s *Store) Fetch(ctx context.Context, obfuscated bool) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.fetch, flagValue(obfuscated))
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// FetchOne returns the lowest-id record with the given state flag.
// ok is false when no such record exists.
func (s *Store) FetchOne(ctx context.Context, obfuscated bool) (rec Record, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, s.queries.fetchOne, flagValue(obfuscated))
	rec, err = scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Counts holds the number of non-empty records per state.
type Counts struct {
	Plain      int `json:"plain"`
	Obfuscated int `json:"obfuscated"`
}

// Count returns how many non-empty records are plain and obfuscated.
// Flag values other than 0 and 1 are ignored.
func (s *Store) Count(ctx context.Context) (Counts, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.count)
	if err != nil {
		return Counts{}, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	var c Counts
	for rows.Next() {
		var flag, n int
		if err := rows.Scan(&flag, &n); err != nil {
			return Counts{}, fmt.Errorf("scan count: %w", err)
		}
		switch flag {
		case 0:
			c.Plain = n
		case 1:
			c.Obfuscated = n
		}
	}
	if err := rows.Err(); err != nil {
		return Counts{}, fmt.Errorf("iterate counts: %w", err)
	}
	return c, nil
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		name    sql.NullString
		content sql.NullString
		flag    int
	)
	if err := row.Scan(&rec.ID, &name, &content, &flag); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	rec.Name = name.String
	rec.Content = content.String
	rec.Obfuscated = flag != 0
	return rec, nil
}

func flagValue(obfuscated bool) int {
	if obfuscated {
		return 1
	}
	return 0
}
