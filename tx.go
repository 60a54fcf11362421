package sqlog

import (
	"context"
	"database/sql"
	"time"
)

// Tx describes transaction. Statements executed through it go through the
// same observation lifecycle as session-level statements.
type Tx struct {
	s        *Session
	sqlTx    *sql.Tx
	err      error
	id       uint64
	started  time.Time
	finished time.Time
}

func newTx(ctx context.Context, opts *sql.TxOptions, s *Session, transactionID uint64) *Tx {
	tx := &Tx{s: s, id: transactionID, started: time.Now()}
	tx.sqlTx, tx.err = s.SQLDB().BeginTx(ctx, opts)
	return tx
}

// Commit commits transaction Tx.
func (tx *Tx) Commit() *Tx {
	tx.finished = time.Now()
	tx.err = tx.sqlTx.Commit()
	return tx
}

// Rollback rollbacks transaction.
func (tx *Tx) Rollback() *Tx {
	tx.finished = time.Now()
	tx.err = tx.sqlTx.Rollback()
	return tx
}

// SQLTx returns original *sql.Tx object.
func (tx *Tx) SQLTx() *sql.Tx {
	return tx.sqlTx
}

// ID returns transaction ID. The number is usefull in logging, makes able to join
// many SQL statements under a single transaction number.
func (tx *Tx) ID() uint64 {
	return tx.id
}

// Duration returns transaction duration. If transaction finished, returns transaction duration.
// If transaction is still open, returns duration from transaction start time.
func (tx *Tx) Duration() time.Duration {
	if tx.finished.IsZero() {
		return time.Since(tx.started)
	}
	return tx.finished.Sub(tx.started)
}

// Err returns error if transaction failed.
func (tx *Tx) Err() error {
	return tx.err
}

func (tx *Tx) Exec(qry string, args ...interface{}) (sql.Result, error) {
	return tx.ExecContext(context.Background(), qry, args...)
}

// ExecContext executes a single statement within the transaction. The
// statement is not prepared, a malformed one fails at execution and reaches
// the logger's exception phase.
func (tx *Tx) ExecContext(ctx context.Context, qry string, args ...interface{}) (sql.Result, error) {
	if tx.err != nil {
		return nil, tx.err
	}

	sc := tx.s.newStatementContext(KindStatement, qry)

	var res sql.Result
	err := tx.s.observe(sc, func() error {
		var xerr error
		res, xerr = tx.sqlTx.ExecContext(ctx, qry, args...)
		return xerr
	})
	if err != nil {
		return nil, wrapExecError(qry, err, args...)
	}

	return res, nil
}
