package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/equitytax/tax-calculator/internal/domain"
)

// Fixed-width UTC timestamps so the text columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps each return as a JSON document plus indexed lookup columns.
// The SSN is excluded from the JSON form and kept in its own column.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// dsn waits up to five seconds on a locked database instead of failing with
// SQLITE_BUSY, and uses WAL so readers do not block the writer.
func dsn(dbPath string) string {
	return filepath.Clean(dbPath) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const upsertReturn = `
INSERT INTO tax_returns (id, user_id, tax_year, status, priority, ssn, submitted_at, due_date, created_at, updated_at, document)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    user_id = excluded.user_id,
    tax_year = excluded.tax_year,
    status = excluded.status,
    priority = excluded.priority,
    ssn = excluded.ssn,
    submitted_at = excluded.submitted_at,
    due_date = excluded.due_date,
    updated_at = excluded.updated_at,
    document = excluded.document`

func (s *SQLiteStore) Save(ctx context.Context, r *domain.TaxReturn) error {
	if r.ID == "" {
		return errors.New("save tax return: missing id")
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode tax return %s: %w", r.ID, err)
	}

	var submitted sql.NullString
	if r.SubmittedAt != nil {
		submitted = sql.NullString{String: r.SubmittedAt.UTC().Format(timeLayout), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, upsertReturn,
		r.ID, r.UserID, r.TaxYear, string(r.Status), string(r.Priority), r.PersonalInfo.SSN, submitted,
		r.DueDate.UTC().Format(timeLayout), r.CreatedAt.UTC().Format(timeLayout), r.UpdatedAt.UTC().Format(timeLayout),
		string(doc))
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("save tax return %s: %w", r.ID, ErrDuplicate)
		}
		return fmt.Errorf("save tax return %s: %w", r.ID, err)
	}
	return nil
}

// isConstraintError reports a UNIQUE violation. The upsert resolves id
// conflicts, so the only one left is the (user_id, tax_year) index.
func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.TaxReturn, error) {
	row := s.db.QueryRowContext(ctx, `SELECT ssn, document FROM tax_returns WHERE id = ?`, id)
	return scanReturn(row)
}

func (s *SQLiteStore) FindByUserAndYear(ctx context.Context, userID string, taxYear int) (*domain.TaxReturn, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ssn, document FROM tax_returns WHERE user_id = ? AND tax_year = ? ORDER BY created_at, id LIMIT 1`,
		userID, taxYear)
	return scanReturn(row)
}

func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]*domain.TaxReturn, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT ssn, document FROM tax_returns`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tax returns: %w", err)
	}
	defer rows.Close()

	out := []*domain.TaxReturn{}
	for rows.Next() {
		r, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tax returns: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tax_returns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tax return %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tax return %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReturn(sc scanner) (*domain.TaxReturn, error) {
	var ssn, doc string
	if err := sc.Scan(&ssn, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read tax return: %w", err)
	}

	var r domain.TaxReturn
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("decode tax return: %w", err)
	}
	r.PersonalInfo.SSN = ssn
	return &r, nil
}
