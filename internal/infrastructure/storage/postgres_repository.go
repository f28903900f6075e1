package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"mediawatch/internal/domain"
	"mediawatch/internal/ports"
)

const defaultTable = "press_articles"

// PostgresRepository reads and writes the labeled-article table the upstream
// classification pipeline fills.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

var _ ports.CollectionSource = (*PostgresRepository)(nil)
var _ ports.ArticleSink = (*PostgresRepository)(nil)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB; an empty table name falls back to the
// default.
func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	if table == "" {
		table = defaultTable
	}
	return &PostgresRepository{db: db, table: table}
}

// Load reads the whole table ordered by date.
func (r *PostgresRepository) Load(ctx context.Context) (domain.Collection, error) {
	return r.query(ctx, r.selectBuilder())
}

// WindowedSource is a repository view restricted to a closed date range and
// an optional territory set, for deployments that only report on a campaign
// period.
type WindowedSource struct {
	repo        *PostgresRepository
	start       time.Time
	end         time.Time
	territories []string
}

var _ ports.CollectionSource = (*WindowedSource)(nil)

// Window restricts the repository; zero bounds and an empty territory set
// leave that dimension unconstrained.
func (r *PostgresRepository) Window(start, end time.Time, territories []string) *WindowedSource {
	return &WindowedSource{repo: r, start: start, end: end, territories: territories}
}

// Load reads the restricted record set ordered by date.
func (s *WindowedSource) Load(ctx context.Context) (domain.Collection, error) {
	return s.repo.LoadWindow(ctx, s.start, s.end, s.territories)
}

// LoadWindow reads records with a date inside the closed range, optionally
// restricted to a territory set. Zero bounds load the whole table.
func (r *PostgresRepository) LoadWindow(ctx context.Context, start, end time.Time, territories []string) (domain.Collection, error) {
	builder := r.selectBuilder()
	if !start.IsZero() {
		builder = builder.Where(sq.GtOrEq{"date": domain.Day(start)})
	}
	if !end.IsZero() {
		builder = builder.Where(sq.LtOrEq{"date": domain.Day(end)})
	}
	if len(territories) > 0 {
		builder = builder.Where(sq.Eq{"territoire": territories})
	}
	return r.query(ctx, builder)
}

// Save inserts labeled records in one transaction.
func (r *PostgresRepository) Save(ctx context.Context, records []domain.Article) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range records {
		a := &records[i]
		query, args, err := sq.Insert(r.table).
			Columns("date", "territoire", "theme", "media", "qualite_retour", "sujet", "article").
			Values(domain.Day(a.Date), a.Territory, a.Theme, a.Media, a.Tonality, a.Subject, a.Text).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) selectBuilder() sq.SelectBuilder {
	return sq.Select("date", "territoire", "theme", "media", "qualite_retour", "sujet", "article").
		From(r.table).
		OrderBy("date").
		PlaceholderFormat(sq.Dollar)
}

func (r *PostgresRepository) query(ctx context.Context, builder sq.SelectBuilder) (domain.Collection, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	var collection domain.Collection
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.Date, &a.Territory, &a.Theme, &a.Media, &a.Tonality, &a.Subject, &a.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		a.Date = domain.Day(a.Date)
		collection = append(collection, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return collection, nil
}
