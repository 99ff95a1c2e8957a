package sqlexec

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/smartcampus/smartcampus/internal/query"
)

func TestExecuteReturnsColumnsAndRows(t *testing.T) {
	db, mock := newSQLMock(t)
	engine := NewEngine(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.student_name, sp.gpa FROM students s JOIN student_performance sp ON s.student_id = sp.student_id WHERE s.student_id = $1`)).
		WithArgs("S42").
		WillReturnRows(sqlmock.NewRows([]string{"student_name", "gpa"}).
			AddRow([]byte("Asha"), 3.75).
			AddRow("Asha", 3.5))

	result, err := engine.Execute(context.Background(), query.Request{
		SQL:  "SELECT s.student_name, sp.gpa FROM students s JOIN student_performance sp ON s.student_id = sp.student_id WHERE s.student_id = $1",
		Args: []any{"S42"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Columns) != 2 || result.Columns[0] != "student_name" {
		t.Fatalf("Columns = %#v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("len(Rows) = %d", len(result.Rows))
	}
	if result.Rows[0][0] != "Asha" {
		t.Fatalf("Rows[0][0] = %#v", result.Rows[0][0])
	}
	if result.Rows[1][1] != 3.5 {
		t.Fatalf("Rows[1][1] = %#v", result.Rows[1][1])
	}
	assertSQLMock(t, mock)
}

func TestExecuteLiteralStatementWithoutArgs(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM students`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	result, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: "SELECT COUNT(*) FROM students"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Rows[0][0] != int64(12) {
		t.Fatalf("Rows[0][0] = %#v", result.Rows[0][0])
	}
	assertSQLMock(t, mock)
}

func TestExecuteWrapsDatabaseError(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nope FROM students`)).
		WillReturnError(errors.New(`column "nope" does not exist`))

	_, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: "SELECT nope FROM students"})
	if err == nil {
		t.Fatal("expected error")
	}
	assertSQLMock(t, mock)
}

func TestExecuteRequiresSQL(t *testing.T) {
	db, _ := newSQLMock(t)
	if _, err := NewEngine(db).Execute(context.Background(), query.Request{SQL: "   "}); err == nil {
		t.Fatal("expected error for empty sql")
	}
	if _, err := (&Engine{}).Execute(context.Background(), query.Request{SQL: "SELECT 1"}); err == nil {
		t.Fatal("expected error for missing db")
	}
}

func TestNormalizeValuesParsesDecimals(t *testing.T) {
	got := normalizeValues([]any{[]byte("3.25"), "CSE", int64(4)}, []bool{true, false, false})
	if got[0] != 3.25 {
		t.Fatalf("got[0] = %#v", got[0])
	}
	if got[1] != "CSE" {
		t.Fatalf("got[1] = %#v", got[1])
	}
	if got[2] != int64(4) {
		t.Fatalf("got[2] = %#v", got[2])
	}
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
