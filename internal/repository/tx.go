package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers that mean "another transaction won".
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlDuplicateEntry  = 1062
)

type txKey struct{}

// queryer is the subset of *sql.DB and *sql.Tx used by the repositories.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction stored in ctx by TxManager, or db when the
// call is not part of a transaction.
func conn(ctx context.Context, db *sql.DB) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// TxManager runs units of work inside SERIALIZABLE transactions.  The
// transaction travels in the context so repositories join it without
// having it passed explicitly.
type TxManager struct {
	db      *sql.DB
	timeout time.Duration
}

// NewTxManager returns a TxManager.  A positive timeout bounds each
// transaction, and with it how long row locks can be held.
func NewTxManager(db *sql.DB, timeout time.Duration) *TxManager {
	return &TxManager{db: db, timeout: timeout}
}

// WithinTransaction executes fn in a new transaction.  The transaction is
// committed when fn returns nil and rolled back otherwise.  Deadlocks and
// lock wait timeouts are reported as ErrConflict.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	committed = true
	return nil
}

func classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}
