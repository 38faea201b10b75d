package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/db"
)

// Store persists records in SQLite. It implements capture.Saver.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a record store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Save creates a new record from the session's fields and returns its
// id. Called at most once per capture session; later saves for the
// same session go through Update.
func (s *Store) Save(ctx context.Context, t capture.LogicalType, fields map[string]capture.Value, actorID string) (string, error) {
	now := s.now().UTC()
	rec := normalize(t, fields, actorID, now)
	rec.ID = uuid.New().String()
	rec.CreatedBy = actorID
	rec.CreatedAt = now
	rec.UpdatedAt = now

	extras, err := json.Marshal(rec.Fields)
	if err != nil {
		return "", fmt.Errorf("marshalling extra fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, logical_type, title, body, fields, due_at, priority, assignee, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.LogicalType, rec.Title, rec.Body, string(extras),
		nullableTime(rec.DueAt), rec.Priority, rec.Assignee, rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting record: %w", err)
	}
	return rec.ID, nil
}

// Update rewrites an existing record from the session's current fields.
func (s *Store) Update(ctx context.Context, id string, t capture.LogicalType, fields map[string]capture.Value, actorID string) error {
	now := s.now().UTC()
	rec := normalize(t, fields, actorID, now)

	extras, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshalling extra fields: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET logical_type = ?, title = ?, body = ?, fields = ?, due_at = ?, priority = ?, assignee = ?, updated_at = ?
		 WHERE id = ?`,
		rec.LogicalType, rec.Title, rec.Body, string(extras),
		nullableTime(rec.DueAt), rec.Priority, rec.Assignee, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

// Get returns a record by id, or nil if it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, logical_type, title, body, fields, due_at, priority, assignee, created_by, created_at, updated_at
		 FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return rec, nil
}

// List returns records newest first, narrowed by the filter.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `SELECT id, logical_type, title, body, fields, due_at, priority, assignee, created_by, created_at, updated_at
		 FROM records WHERE 1=1`
	args := []any{}

	if filter.LogicalType != "" {
		query += " AND logical_type = ?"
		args = append(args, filter.LogicalType)
	}
	if filter.CreatedBy != "" {
		query += " AND created_by = ?"
		args = append(args, filter.CreatedBy)
	}
	query += " ORDER BY updated_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Search matches query against title, body and the extras bag.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, logical_type, title, body, fields, due_at, priority, assignee, created_by, created_at, updated_at
		 FROM records WHERE title LIKE ? OR body LIKE ? OR fields LIKE ?
		 ORDER BY updated_at DESC LIMIT ?`,
		like, like, like, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var extras string
	var dueAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.LogicalType, &rec.Title, &rec.Body, &extras,
		&dueAt, &rec.Priority, &rec.Assignee, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dueAt.Valid {
		t := dueAt.Time
		rec.DueAt = &t
	}
	if err := json.Unmarshal([]byte(extras), &rec.Fields); err != nil {
		rec.Fields = nil
	}
	if len(rec.Fields) == 0 {
		rec.Fields = nil
	}
	return &rec, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
