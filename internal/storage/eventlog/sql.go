package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

// Drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS pool_events (
	seq     BIGINT PRIMARY KEY,
	tx_hash TEXT NOT NULL,
	kind    TEXT NOT NULL,
	mint    TEXT,
	payload TEXT NOT NULL
)`

// SQLSink stores events in the pool_events table.
type SQLSink struct {
	db     *sql.DB
	driver string
	insert string
	logger *zap.Logger
}

// OpenSQL connects to dsn with driver and creates the table if needed.
func OpenSQL(ctx context.Context, driver, dsn string, logger *zap.Logger) (*SQLSink, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported event log driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open event database: %w", err)
	}
	if driver == DriverSQLite {
		// a single connection keeps sqlite writers from contending for the file lock
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping event database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize event schema: %w", err)
	}
	s := &SQLSink{
		db:     db,
		driver: driver,
		insert: "INSERT INTO pool_events (seq, tx_hash, kind, mint, payload) VALUES " + placeholders(driver, 5),
		logger: logger.Named("eventlog"),
	}
	return s, nil
}

// placeholders returns the parameter list for n values in the driver's syntax.
func placeholders(driver string, n int) string {
	ps := make([]string, n)
	for i := range ps {
		if driver == DriverPostgres {
			ps[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ps[i] = "?"
		}
	}
	return "(" + strings.Join(ps, ", ") + ")"
}

// Publish inserts records in one transaction.
func (s *SQLSink) Publish(ctx context.Context, records []events.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insert)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		e, err := toEntry(r)
		if err != nil {
			return err
		}
		var mint sql.NullString
		if e.Mint != "" {
			mint = sql.NullString{String: e.Mint, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, int64(e.Seq), e.TxHash, string(e.Kind), mint, string(e.Payload)); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", e.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	s.logger.Debug("events stored", zap.Int("count", len(records)))
	return nil
}

// LastSeq returns the highest stored sequence number, or zero.
func (s *SQLSink) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM pool_events").Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read last event: %w", err)
	}
	return uint64(seq.Int64), nil
}

// ByMint returns the events of mint in sequence order.
func (s *SQLSink) ByMint(ctx context.Context, mint string) ([]events.Record, error) {
	q := "SELECT seq, tx_hash, kind, payload FROM pool_events WHERE mint = " + strings.Trim(placeholders(s.driver, 1), "()") + " ORDER BY seq"
	rows, err := s.db.QueryContext(ctx, q, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []events.Record
	for rows.Next() {
		var (
			e       entry
			seq     int64
			kind    string
			payload string
		)
		if err := rows.Scan(&seq, &e.TxHash, &kind, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Seq, e.Kind, e.Payload = uint64(seq), events.Kind(kind), []byte(payload)
		r, err := e.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}
