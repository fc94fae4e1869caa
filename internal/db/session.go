package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"account_service/internal/observability"
)

// IsolationLevel selects the transaction isolation a session runs under.
type IsolationLevel int

const (
	ReadCommitted IsolationLevel = iota
	RepeatableRead
)

func (l IsolationLevel) txOptions() *sql.TxOptions {
	switch l {
	case RepeatableRead:
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	default:
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
}

// Session is a handle bound to one open transaction. All statements issued
// through it observe that transaction's snapshot. Sessions are created by
// Manager.Run and are invalid outside the callback that received them.
type Session struct {
	tx *sql.Tx
}

// Insert writes one row into table. A constraint violation fails the
// statement and, through Run, rolls the transaction back.
func (s *Session) Insert(ctx context.Context, table string, columns []string, values ...any) error {
	query := buildInsert(table, columns, nil, false)
	if _, err := s.tx.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// InsertIgnore writes one row into table unless doing so would violate a
// uniqueness constraint, in which case the statement is a no-op. The
// returned count is 1 when the row was written and 0 on conflict. An empty
// conflictColumns targets any uniqueness constraint on the table.
func (s *Session) InsertIgnore(ctx context.Context, table string, columns, conflictColumns []string, values ...any) (int64, error) {
	query := buildInsert(table, columns, conflictColumns, true)
	result, err := s.tx.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// Query runs a read inside the session's transaction.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.tx.QueryContext(ctx, query, args...)
}

// QueryRow runs a single-row read inside the session's transaction.
func (s *Session) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.tx.QueryRowContext(ctx, query, args...)
}

func buildInsert(table string, columns, conflictColumns []string, ignoreConflict bool) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if ignoreConflict {
		if len(conflictColumns) > 0 {
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))
		} else {
			b.WriteString(" ON CONFLICT DO NOTHING")
		}
	}
	return b.String()
}

// Manager opens scoped transactions against the shared pool.
type Manager struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewManager builds a Manager. metrics may be nil; transaction counters
// are then skipped.
func NewManager(db *sql.DB, metrics *observability.Metrics) *Manager {
	return &Manager{db: db, metrics: metrics}
}

// DB exposes the underlying pool for reads that need no transaction.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Run opens one transaction at the requested isolation level, passes a
// scoped session to fn, and commits when fn returns nil. On error, panic,
// or context cancellation the transaction is rolled back; the borrowed
// connection is released on every exit path.
func (m *Manager) Run(ctx context.Context, level IsolationLevel, fn func(ctx context.Context, s *Session) error) (err error) {
	tx, err := m.db.BeginTx(ctx, level.txOptions())
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logrus.WithError(rbErr).Error("Failed to roll back transaction after panic")
			}
			m.metrics.CountTransaction(observability.TxResultRollback)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logrus.WithError(rbErr).Error("Failed to roll back transaction")
			}
			m.metrics.CountTransaction(observability.TxResultRollback)
			return
		}
		err = tx.Commit()
		if err == nil {
			m.metrics.CountTransaction(observability.TxResultCommit)
		}
	}()

	err = fn(ctx, &Session{tx: tx})
	return err
}
