package sqlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/axkit/errors"
)

// Instance represents a single execution attempt of a prepared statement.
type Instance struct {
	stmt *Stmt

	sqlStmt *sql.Stmt

	// sc is the attempt description handed to the statement logger.
	sc *StatementContext

	// RowsFetched holds number of rows fetched by SELECT.
	RowsFetched int

	// RowsFetchedIn holds duration between getting 1st and last rows.
	RowsFetchedIn time.Duration

	tx *Tx

	err error

	result sql.Result
	row    *sql.Row
	rows   *sql.Rows
}

func newInstance(stmt *Stmt, sc *StatementContext, err error) *Instance {
	return &Instance{stmt: stmt, sqlStmt: stmt.sqlStmt, sc: sc, err: err}
}

// Context returns the attempt description. Nil if the statement failed to
// prepare and the attempt never dispatched.
func (in *Instance) Context() *StatementContext {
	return in.sc
}

func (in *Instance) Err() error {
	return in.err
}

func (in *Instance) Tx() *Tx {
	return in.tx
}

// Exec executes SQL command represented by Instance. A SQL command does not return any values.
func (in *Instance) Exec(args ...interface{}) (sql.Result, error) {
	return in.ExecContext(context.Background(), args...)
}

// ExecContext executes SQL command what not returns data back.
func (in *Instance) ExecContext(ctx context.Context, args ...interface{}) (sql.Result, error) {
	if in.err != nil {
		return nil, in.err
	}

	err := in.stmt.s.observe(in.sc, func() error {
		var xerr error
		in.result, xerr = in.sqlStmt.ExecContext(ctx, args...)
		return xerr
	})
	if err != nil {
		in.err = wrapExecError(in.stmt.text, err, args...)
		return nil, in.err
	}

	return in.result, nil
}

func (in *Instance) QueryRow(args ...interface{}) *Instance {
	return in.QueryRowContext(context.Background(), args...)
}

func (in *Instance) QueryRowContext(ctx context.Context, args ...interface{}) *Instance {
	if in.err != nil {
		return in
	}

	in.rows = nil
	err := in.stmt.s.observe(in.sc, func() error {
		in.row = in.sqlStmt.QueryRowContext(ctx, args...)
		return in.row.Err()
	})
	if err != nil {
		in.err = wrapQueryError(in.stmt.text, err, args...)
	}

	return in
}

func (in *Instance) Query(args ...interface{}) *Instance {
	return in.QueryContext(context.Background(), args...)
}

func (in *Instance) QueryContext(ctx context.Context, args ...interface{}) *Instance {
	if in.err != nil {
		return in
	}

	err := in.stmt.s.observe(in.sc, func() error {
		var qerr error
		in.rows, qerr = in.sqlStmt.QueryContext(ctx, args...)
		return qerr
	})
	if err != nil {
		in.err = wrapQueryError(in.stmt.text, err, args...)
	}

	return in
}

// Scan reads values from database driver to dest.
func (in *Instance) Scan(dest ...interface{}) error {
	if in.err != nil {
		return in.err
	}

	switch {
	case in.rows != nil:
		in.err = parseError(in.rows.Scan(dest...))
	case in.row != nil:
		in.err = parseError(in.row.Scan(dest...))
	default:
		in.err = errors.New("sqlog: invalid Scan() call")
	}

	return in.err
}

// Fetch iterates over the result set, scanning every row into dest and
// calling f after each scan.
func (in *Instance) Fetch(f func() error, dest ...interface{}) *Instance {

	if in.err != nil {
		return in
	}

	defer in.rows.Close()

	fetchStart := time.Now()
	for in.rows.Next() {
		if err := in.rows.Scan(dest...); err != nil {
			in.err = parseError(err)
			return in
		}

		if f != nil {
			if err := f(); err != nil {
				in.err = err
				return in
			}
		}

		in.RowsFetched++
	}

	if err := in.rows.Err(); err != nil {
		in.err = parseError(err)
		return in
	}

	in.RowsFetchedIn = time.Since(fetchStart)
	return in
}

// Close closes the attempt's result set with preserving error if was exist.
func (in *Instance) Close() error {
	if in.rows != nil {
		err := in.rows.Close()
		// preserve existing error
		if in.err == nil {
			in.err = err
		}
		return in.err
	}

	return nil
}
