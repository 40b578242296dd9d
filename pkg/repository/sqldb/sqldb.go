package sqldb

import (
	"context"
	"database/sql"
	_ "embed"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate
func Schema() string {
	return schemaSQL
}

// Dialect selects placeholder style and driver
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB is a relational Repository on PostgreSQL or SQLite
type DB struct {
	db      *sql.DB
	dialect Dialect
	patient *patientRepository
	turn    *turnRepository
	request *requestRepository
}

var (
	_ interfaces.Repository = &DB{}
	_ interfaces.Pinger     = &DB{}
)

// NewPostgres connects to PostgreSQL with a lib/pq DSN or URL
func NewPostgres(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres")
	}
	return newDB(ctx, db, DialectPostgres)
}

// NewSQLite opens (or creates) a SQLite database file
func NewSQLite(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", path))
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	return newDB(ctx, db, DialectSQLite)
}

func newDB(ctx context.Context, db *sql.DB, dialect Dialect) (*DB, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect database", goerr.V("dialect", dialect))
	}

	q := &querier{db: db, dialect: dialect}
	return &DB{
		db:      db,
		dialect: dialect,
		patient: &patientRepository{q: q},
		turn:    &turnRepository{q: q},
		request: &requestRepository{q: q},
	}, nil
}

// Migrate creates tables and indexes that do not exist yet
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schemaSQL); err != nil {
		return goerr.Wrap(err, "failed to apply schema", goerr.V("dialect", d.dialect))
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Patient() interfaces.PatientRepository {
	return d.patient
}

func (d *DB) Turn() interfaces.TurnRepository {
	return d.turn
}

func (d *DB) Request() interfaces.RequestRepository {
	return d.request
}

func (d *DB) Close() error {
	return d.db.Close()
}

// querier rewrites "?" placeholders for the dialect
type querier struct {
	db      *sql.DB
	dialect Dialect
}

func (q *querier) rebind(query string) string {
	if q.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// timestampLayout has fixed width so stored text sorts chronologically
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid stored timestamp", goerr.V("value", s))
	}
	return t, nil
}
