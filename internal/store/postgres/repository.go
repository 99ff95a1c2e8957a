package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/smartcampus/smartcampus/internal/campus"
	"github.com/smartcampus/smartcampus/internal/faq"
	"github.com/smartcampus/smartcampus/internal/store"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping campus db: %w", err)
	}
	return nil
}

// ColumnsByTable reads column names for the given tables from
// information_schema, in ordinal order. Tables that do not exist are absent
// from the result.
func (r *Repository) ColumnsByTable(ctx context.Context, tables []string) (map[string][]string, error) {
	out := make(map[string][]string, len(tables))
	if len(tables) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(tables))
	args := make([]any, len(tables))
	for i, table := range tables {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = table
	}
	query := `
SELECT table_name, column_name
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name IN (` + strings.Join(placeholders, ", ") + `)
ORDER BY table_name, ordinal_position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read campus schema: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, fmt.Errorf("scan campus schema: %w", err)
		}
		out[table] = append(out[table], column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campus schema: %w", err)
	}
	return out, nil
}

func (r *Repository) ListFAQs(ctx context.Context) ([]faq.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT question, answer FROM `+campus.TableFAQs)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer rows.Close()

	entries := make([]faq.Entry, 0)
	for rows.Next() {
		var entry faq.Entry
		if err := rows.Scan(&entry.Question, &entry.Answer); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}
	return entries, nil
}

func (r *Repository) FindUser(ctx context.Context, username string) (store.User, error) {
	query := `
SELECT user_id, username, password, role, linked_student_id, department
FROM users_auth
WHERE username = $1`

	var (
		user       store.User
		linked     sql.NullString
		department sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.UserID,
		&user.Username,
		&user.Password,
		&user.Role,
		&linked,
		&department,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, store.ErrNotFound
		}
		return store.User{}, fmt.Errorf("find user: %w", err)
	}
	if linked.Valid {
		v := linked.String
		user.LinkedStudentID = &v
	}
	if department.Valid {
		v := department.String
		user.Department = &v
	}
	return user, nil
}
