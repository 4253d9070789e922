// Package entdriver
package entdriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/papercomputeco/ragnotes/pkg/storage"
	"github.com/papercomputeco/ragnotes/pkg/storage/ent/migrate"
)

const (
	notesTable     = "notes"
	columnID       = "id"
	columnText     = "text"
	columnCreateAt = "created_at"
)

// EntDriver provides note storage using ent's SQL builders over a
// database/sql connection. It is database-agnostic and can be embedded by
// specific drivers.
type EntDriver struct {
	DB      *sql.DB
	Dialect string
	drv     *entsql.Driver
}

// New wraps db with ent's driver for the given dialect and runs the
// append-only schema migration.
func New(ctx context.Context, db *sql.DB, d string) (*EntDriver, error) {
	drv := entsql.OpenDB(d, db)

	m, err := schema.NewMigrate(drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Create(ctx, migrate.Tables...); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &EntDriver{DB: db, Dialect: d, drv: drv}, nil
}

func (ed *EntDriver) builder() *entsql.DialectBuilder {
	return entsql.Dialect(ed.Dialect)
}

// Insert stores a new note and returns it with its assigned ID.
func (ed *EntDriver) Insert(ctx context.Context, text string) (*storage.Note, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot store empty note")
	}

	now := time.Now().UTC()
	insert := ed.builder().
		Insert(notesTable).
		Columns(columnText, columnCreateAt).
		Values(text, now)

	note := &storage.Note{Text: text, CreatedAt: now}

	// Postgres has no LastInsertId; it reports the key through RETURNING.
	if ed.Dialect == dialect.Postgres {
		query, args := insert.Returning(columnID).Query()
		if err := ed.DB.QueryRowContext(ctx, query, args...).Scan(&note.ID); err != nil {
			return nil, fmt.Errorf("failed to insert note: %w", err)
		}
		return note, nil
	}

	query, args := insert.Query()
	res, err := ed.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	note.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read note id: %w", err)
	}

	return note, nil
}

// Get retrieves a note by its ID.
func (ed *EntDriver) Get(ctx context.Context, id int64) (*storage.Note, error) {
	notes, err := ed.GetByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}
	return notes[0], nil
}

// GetByIDs retrieves notes by ID, skipping unknown IDs.
func (ed *EntDriver) GetByIDs(ctx context.Context, ids []int64) ([]*storage.Note, error) {
	if len(ids) == 0 {
		return []*storage.Note{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return ed.selectNotes(ctx, entsql.In(columnID, args...))
}

// List returns all notes ordered by ID.
func (ed *EntDriver) List(ctx context.Context) ([]*storage.Note, error) {
	return ed.selectNotes(ctx, nil)
}

func (ed *EntDriver) selectNotes(ctx context.Context, where *entsql.Predicate) ([]*storage.Note, error) {
	sel := ed.builder().
		Select(columnID, columnText, columnCreateAt).
		From(entsql.Table(notesTable)).
		OrderBy(columnID)
	if where != nil {
		sel = sel.Where(where)
	}

	query, args := sel.Query()
	rows, err := ed.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []*storage.Note{}
	for rows.Next() {
		n := &storage.Note{}
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// Delete removes a note by ID.
func (ed *EntDriver) Delete(ctx context.Context, id int64) error {
	query, args := ed.builder().
		Delete(notesTable).
		Where(entsql.EQ(columnID, id)).
		Query()

	if _, err := ed.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	return nil
}

// Close closes the database connection.
func (ed *EntDriver) Close() error {
	return ed.drv.Close()
}

var _ storage.Driver = (*EntDriver)(nil)
