package store

import (
	"context"
	"fmt"
)

// Update sets content and state flag of the record with the given id.
// The change is a single-row transaction: either both columns change or
// neither does. Returns ErrRecordNotFound if no row matched.
func (s *Store) Update(ctx context.Context, id int64, content string, obfuscated bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update record %d: begin tx: %w", id, err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, s.queries.update, content, flagValue(obfuscated), id)
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update record %d: %w", id, ErrRecordNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update record %d: commit: %w", id, err)
	}
	return nil
}

// Insert adds a record and returns its id. Used to seed local databases.
func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	result, err := s.db.ExecContext(ctx, s.queries.insert, rec.Name, rec.Content, flagValue(rec.Obfuscated))
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert record: last insert id: %w", err)
	}
	return id, nil
}
