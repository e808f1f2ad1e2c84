package query_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/flemzord/toolclaw/internal/query"

	_ "modernc.org/sqlite"
)

type countingDriver struct {
	calls int
}

func (d *countingDriver) Query(context.Context, string) ([]string, [][]any, error) {
	d.calls++
	return []string{"n"}, [][]any{{int64(1)}}, nil
}

func TestRun_RejectedQueryNeverReachesDriver(t *testing.T) {
	t.Parallel()

	d := &countingDriver{}
	_, err := query.Run(t.Context(), d, "DROP TABLE users", 10)
	if !errors.Is(err, query.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), `"drop"`) {
		t.Errorf("error %q does not name the keyword", err)
	}
	if d.calls != 0 {
		t.Fatalf("driver called %d times", d.calls)
	}
}

func TestRun_AcceptedQuery(t *testing.T) {
	t.Parallel()

	d := &countingDriver{}
	out, err := query.Run(t.Context(), d, "select 1 as n", 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.calls != 1 || !strings.HasSuffix(out, "1 row") {
		t.Fatalf("calls = %d, out = %q", d.calls, out)
	}
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, email TEXT)",
		"INSERT INTO users (name, email) VALUES ('Alice', 'alice@example.com')",
		"INSERT INTO users (name, email) VALUES ('Bob', NULL)",
		"INSERT INTO users (name, email) VALUES ('Charlie', 'charlie@example.com')",
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(t.Context(), s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	return db
}

func TestSQLDriver(t *testing.T) {
	t.Parallel()

	d := &query.SQLDriver{DB: openSQLite(t), Limit: 10}
	cols, rows, err := d.Query(t.Context(), "SELECT id, name, email FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if strings.Join(cols, ",") != "id,name,email" {
		t.Fatalf("columns = %v", cols)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][2] != nil {
		t.Errorf("NULL email scanned as %#v", rows[1][2])
	}

	out := query.Format(cols, rows, 10)
	if !strings.Contains(out, "NULL") || !strings.HasSuffix(out, "3 rows") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestSQLDriver_Limit(t *testing.T) {
	t.Parallel()

	d := &query.SQLDriver{DB: openSQLite(t), Limit: 2}
	out, err := query.Run(t.Context(), d, "SELECT name FROM users ORDER BY id", 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(out, "Charlie") {
		t.Fatalf("limit not applied:\n%s", out)
	}
	if !strings.HasSuffix(out, "showing first 2 rows (more may exist)") {
		t.Fatalf("footer missing:\n%s", out)
	}
}

func TestSQLDriver_QueryError(t *testing.T) {
	t.Parallel()

	d := &query.SQLDriver{DB: openSQLite(t), Limit: 10}
	if _, _, err := d.Query(t.Context(), "SELECT * FROM missing"); err == nil {
		t.Fatal("expected error for missing table")
	}
}
