package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mediawatch/internal/domain"
)

// The stub driver stands in for a live Postgres: it records every statement
// with its arguments and serves canned rows.

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type statement struct {
	query string
	args  []driver.Value
}

type stubConn struct {
	rows    [][]driver.Value
	queries []statement
	execs   []statement
	commits int
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return &stubStmt{conn: c, query: query}, nil
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return &stubTx{conn: c}, nil }

type stubTx struct {
	conn *stubConn
}

func (t *stubTx) Commit() error   { t.conn.commits++; return nil }
func (t *stubTx) Rollback() error { return nil }

type stubStmt struct {
	conn  *stubConn
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.conn.execs = append(s.conn.execs, statement{query: s.query, args: args})
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.conn.queries = append(s.conn.queries, statement{query: s.query, args: args})
	return &stubRows{rows: s.conn.rows}, nil
}

type stubRows struct {
	rows [][]driver.Value
	pos  int
}

func (r *stubRows) Columns() []string {
	return []string{"date", "territoire", "theme", "media", "qualite_retour", "sujet", "article"}
}
func (r *stubRows) Close() error { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

var stubSeq int64

func newStubDB(t *testing.T, conn *stubConn) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("mediawatch-stub-%d", atomic.AddInt64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})

	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(d int) time.Time {
	return time.Date(2023, time.January, d, 0, 0, 0, 0, time.UTC)
}

func row(d int, territory string) []driver.Value {
	return []driver.Value{day(d), territory, "Réseau", "La Voix du Nord", "Négatif", "Coupure", "Une coupure du réseau"}
}

func TestLoadScansRows(t *testing.T) {
	t.Parallel()

	conn := &stubConn{rows: [][]driver.Value{row(4, "Nord"), row(5, "Pas-de-Calais")}}
	repo := NewPostgresRepository(newStubDB(t, conn), "press_articles")

	records, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].Date.Equal(day(4)) || records[0].Territory != "Nord" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Tonality != "Négatif" || records[1].Text != "Une coupure du réseau" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}

	if len(conn.queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(conn.queries))
	}
	query := conn.queries[0].query
	if !strings.Contains(query, "FROM press_articles") || !strings.Contains(query, "ORDER BY date") {
		t.Fatalf("unexpected query: %s", query)
	}
	if strings.Contains(query, "WHERE") {
		t.Fatalf("unfiltered load carries a WHERE clause: %s", query)
	}
}

func TestLoadWindowAppliesBoundsAndTerritories(t *testing.T) {
	t.Parallel()

	conn := &stubConn{}
	repo := NewPostgresRepository(newStubDB(t, conn), "press_articles")

	_, err := repo.LoadWindow(context.Background(), day(1), day(31), []string{"Nord", "Pas-de-Calais"})
	if err != nil {
		t.Fatalf("LoadWindow error: %v", err)
	}

	if len(conn.queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(conn.queries))
	}
	query := conn.queries[0]
	for _, fragment := range []string{"date >= $1", "date <= $2", "territoire IN ($3,$4)"} {
		if !strings.Contains(query.query, fragment) {
			t.Fatalf("query missing %q: %s", fragment, query.query)
		}
	}
	if len(query.args) != 4 {
		t.Fatalf("expected 4 args, got %v", query.args)
	}
	if query.args[2] != "Nord" || query.args[3] != "Pas-de-Calais" {
		t.Fatalf("unexpected territory args: %v", query.args)
	}
}

func TestWindowedSourceDelegates(t *testing.T) {
	t.Parallel()

	conn := &stubConn{rows: [][]driver.Value{row(10, "Nord")}}
	repo := NewPostgresRepository(newStubDB(t, conn), "press_articles")

	records, err := repo.Window(day(1), day(31), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	query := conn.queries[0]
	if !strings.Contains(query.query, "date >= $1") || !strings.Contains(query.query, "date <= $2") {
		t.Fatalf("window bounds missing: %s", query.query)
	}
	if strings.Contains(query.query, "territoire") {
		t.Fatalf("empty territory set must not constrain: %s", query.query)
	}
}

func TestSaveInsertsEveryRecordInOneTransaction(t *testing.T) {
	t.Parallel()

	conn := &stubConn{}
	repo := NewPostgresRepository(newStubDB(t, conn), "press_articles")

	records := []domain.Article{
		{Date: day(4), Territory: "Nord", Theme: "Réseau", Media: "Actu", Tonality: "Factuel", Subject: "Travaux", Text: "Des travaux"},
		{Date: day(5), Territory: "Pas-de-Calais", Theme: "Client", Media: "BFM", Tonality: "Positif", Subject: "Campagne", Text: "Une campagne"},
	}
	if err := repo.Save(context.Background(), records); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if len(conn.execs) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(conn.execs))
	}
	insert := conn.execs[0]
	if !strings.Contains(insert.query, "INSERT INTO press_articles") ||
		!strings.Contains(insert.query, "($1,$2,$3,$4,$5,$6,$7)") {
		t.Fatalf("unexpected insert: %s", insert.query)
	}
	if len(insert.args) != 7 || insert.args[1] != "Nord" {
		t.Fatalf("unexpected insert args: %v", insert.args)
	}
	if conn.commits != 1 {
		t.Fatalf("expected 1 commit, got %d", conn.commits)
	}
}

func TestSaveNothingToDo(t *testing.T) {
	t.Parallel()

	conn := &stubConn{}
	repo := NewPostgresRepository(newStubDB(t, conn), "")

	if err := repo.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save of empty slice errored: %v", err)
	}
	if len(conn.execs) != 0 || conn.commits != 0 {
		t.Fatal("empty save touched the database")
	}
}
