package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// dialect captures the SQL differences between the supported engines.
type dialect struct {
	driver string
	schema string
	// field renders the expression extracting a top-level JSON string field
	// whose name is bound to placeholder n.
	field func(n int) string
	ph    func(n int) string
	// fieldArg renders the bound value naming the field.
	fieldArg    func(name string) string
	bodyArg     string
	isDuplicate func(error) bool
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		doc_key TEXT NOT NULL,
		body TEXT NOT NULL,
		UNIQUE (collection, doc_key)
	)`,
	field:    func(n int) string { return "json_extract(body, ?)" },
	ph:       func(int) string { return "?" },
	fieldArg: func(name string) string { return `$."` + strings.ReplaceAll(name, `"`, ``) + `"` },
	bodyArg:  "?",
	isDuplicate: func(err error) bool {
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

var postgresDialect = dialect{
	driver: "pgx",
	schema: `CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		doc_key TEXT NOT NULL,
		body JSONB NOT NULL,
		UNIQUE (collection, doc_key)
	)`,
	field:    func(n int) string { return fmt.Sprintf("body->>$%d", n) },
	ph:       func(n int) string { return fmt.Sprintf("$%d", n) },
	fieldArg: func(name string) string { return name },
	bodyArg:  "::jsonb",
	isDuplicate: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	},
}

// SQL is a Store backed by a single documents table holding JSON bodies.
type SQL struct {
	db     *sql.DB
	d      dialect
	opts   storeOptions
	closed atomic.Bool
}

var _ Store = (*SQL)(nil)

// OpenSQLite opens (creating if needed) a SQLite-backed store. dsn is a
// file path or ":memory:".
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQL, error) {
	if dsn == "" {
		dsn = "portal.db"
	}
	s, err := openSQL(ctx, sqliteDialect, dsn, opts)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	s.db.SetMaxOpenConns(1)
	return s, nil
}

// OpenPostgres opens a Postgres-backed store through pgx.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*SQL, error) {
	if dsn == "" {
		dsn = "postgres://localhost/portal?sslmode=disable"
	}
	return openSQL(ctx, postgresDialect, dsn, opts)
}

func openSQL(ctx context.Context, d dialect, dsn string, opts []Option) (*SQL, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQL{db: db, d: d, opts: buildOptions(opts)}, nil
}

func (s *SQL) bodyPlaceholder(n int) string {
	if s.d.bodyArg == "?" {
		return "?"
	}
	return s.d.ph(n) + s.d.bodyArg
}

// Insert implements Store.
func (s *SQL) Insert(ctx context.Context, collection, key string, fields map[string]any) (string, error) {
	if s.closed.Load() {
		return "", ErrClosed
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	id := uuid.NewString()
	q := fmt.Sprintf(`INSERT INTO documents (id, collection, doc_key, body) VALUES (%s, %s, %s, %s)`,
		s.d.ph(1), s.d.ph(2), s.d.ph(3), s.bodyPlaceholder(4))
	if _, err := s.db.ExecContext(ctx, q, id, collection, key, string(body)); err != nil {
		if s.d.isDuplicate(err) {
			return "", fmt.Errorf("%w: %s/%s", ErrDuplicateKey, collection, key)
		}
		return "", fmt.Errorf("insert %s/%s: %w", collection, key, err)
	}
	return id, nil
}

// where renders the WHERE clause for collection and filters with its
// bound arguments.
func (s *SQL) where(collection string, filters []Filter) (string, []any) {
	var b strings.Builder
	args := []any{collection}
	b.WriteString("collection = " + s.d.ph(1))
	for _, f := range filters {
		args = append(args, s.d.fieldArg(f.Field))
		expr := s.d.field(len(args))
		marks := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			args = append(args, v)
			marks = append(marks, s.d.ph(len(args)))
		}
		if f.Op == OpEq {
			fmt.Fprintf(&b, " AND %s = %s", expr, marks[0])
			continue
		}
		fmt.Fprintf(&b, " AND %s IN (%s)", expr, strings.Join(marks, ", "))
	}
	return b.String(), args
}

// Find implements Store.
func (s *SQL) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := s.opts.checkFilters(filters); err != nil {
		return nil, err
	}
	if emptyIn(filters) {
		return nil, nil
	}
	where, args := s.where(collection, filters)
	rows, err := s.db.QueryContext(ctx, `SELECT id, doc_key, body FROM documents WHERE `+where+` ORDER BY doc_key`, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()
	var out []Document
	for rows.Next() {
		var (
			d    Document
			body []byte
		)
		if err := rows.Scan(&d.ID, &d.Key, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		if err := json.Unmarshal(body, &d.Fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, d.Key, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return out, nil
}

// Update implements Store. Matches are read, patched and written back in
// one transaction.
func (s *SQL) Update(ctx context.Context, collection string, filter Filter, patch Patch) (matched int, retErr error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if err := s.opts.checkFilters([]Filter{filter}); err != nil {
		return 0, err
	}
	if emptyIn([]Filter{filter}) {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin update %s: %w", collection, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	where, args := s.where(collection, []Filter{filter})
	rows, err := tx.QueryContext(ctx, `SELECT id, body FROM documents WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("select %s: %w", collection, err)
	}
	type pending struct {
		id   string
		body []byte
	}
	var hits []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.body); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan %s: %w", collection, err)
		}
		hits = append(hits, p)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("select %s: %w", collection, err)
	}

	now := s.opts.now()
	q := fmt.Sprintf(`UPDATE documents SET body = %s WHERE id = %s`, s.bodyPlaceholder(1), s.d.ph(2))
	for _, h := range hits {
		var fields map[string]any
		if err := json.Unmarshal(h.body, &fields); err != nil {
			return 0, fmt.Errorf("decode %s/%s: %w", collection, h.id, err)
		}
		applyPatch(fields, patch, now)
		body, err := json.Marshal(fields)
		if err != nil {
			return 0, fmt.Errorf("encode %s/%s: %w", collection, h.id, err)
		}
		if _, err := tx.ExecContext(ctx, q, string(body), h.id); err != nil {
			return 0, fmt.Errorf("update %s/%s: %w", collection, h.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit update %s: %w", collection, err)
	}
	return len(hits), nil
}

// Delete implements Store.
func (s *SQL) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if err := s.opts.checkFilters([]Filter{filter}); err != nil {
		return 0, err
	}
	if emptyIn([]Filter{filter}) {
		return 0, nil
	}
	where, args := s.where(collection, []Filter{filter})
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return int(n), nil
}

// Close implements Store.
func (s *SQL) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
