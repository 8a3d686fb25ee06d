package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteStore is a Store backed by the documents table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore over an existing connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get decodes the document at path into v.
func (s *SQLiteStore) Get(ctx context.Context, path string, v any) error {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&data)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal document %s: %w", path, err)
	}
	return nil
}

// Set writes v as the document at path, merging top-level fields into any
// existing document when merge is set.
func (s *SQLiteStore) Set(ctx context.Context, path string, v any, merge bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", path, err)
	}

	if !merge {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO documents (path, data, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			path, string(data), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to write document %s: %w", path, err)
		}
		return nil
	}

	// Merge runs inside one transaction so concurrent writers to other
	// fields are not clobbered.
	return s.inTx(ctx, func(tx *sql.Tx) error {
		merged := map[string]json.RawMessage{}

		var existing string
		err := tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&existing)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read document %s: %w", path, err)
		}
		if err == nil {
			if err := json.Unmarshal([]byte(existing), &merged); err != nil {
				return fmt.Errorf("failed to unmarshal document %s: %w", path, err)
			}
		}

		incoming := map[string]json.RawMessage{}
		if err := json.Unmarshal(data, &incoming); err != nil {
			return fmt.Errorf("merge requires an object document at %s: %w", path, err)
		}
		for key, value := range incoming {
			merged[key] = value
		}

		mergedData, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("failed to marshal merged document %s: %w", path, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (path, data, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			path, string(mergedData), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to write document %s: %w", path, err)
		}
		return nil
	})
}

// RemoveElements removes exactly the given elements from a string-array
// field. The read and write share one transaction, so a token registered
// concurrently by another flow is never lost.
func (s *SQLiteStore) RemoveElements(ctx context.Context, path, field string, elements []string) error {
	if len(elements) == 0 {
		return nil
	}

	remove := make(map[string]bool, len(elements))
	for _, e := range elements {
		remove[e] = true
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var data string
		err := tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&data)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if err != nil {
			return fmt.Errorf("failed to read document %s: %w", path, err)
		}

		doc := map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return fmt.Errorf("failed to unmarshal document %s: %w", path, err)
		}

		var values []string
		if raw, ok := doc[field]; ok {
			if err := json.Unmarshal(raw, &values); err != nil {
				return fmt.Errorf("field %s of document %s is not a string array: %w", field, path, err)
			}
		}

		kept := make([]string, 0, len(values))
		for _, value := range values {
			if !remove[value] {
				kept = append(kept, value)
			}
		}

		keptData, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("failed to marshal field %s: %w", field, err)
		}
		doc[field] = keptData

		docData, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", path, err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET data = ?, updated_at = ? WHERE path = ?`,
			string(docData), time.Now().UTC(), path)
		if err != nil {
			return fmt.Errorf("failed to write document %s: %w", path, err)
		}
		return nil
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
