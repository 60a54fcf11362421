package sqlog

import (
	"context"
	"database/sql"
)

// Batch collects raw SQL statements to be submitted to the database as a
// single execution attempt. The statement logger sees one before call and
// one terminal call for the whole batch regardless of its size, with no
// per-element statement text: the session tracks aggregate batch identity
// only. A failing element fails the whole batch, the driver error of the
// first failed element reaches the logger.
type Batch struct {
	s     *Session
	stmts []string
}

// Add appends a statement to the batch.
func (b *Batch) Add(qry string) *Batch {
	b.stmts = append(b.stmts, qry)
	return b
}

func (b *Batch) Len() int {
	return len(b.stmts)
}

func (b *Batch) Execute() ([]sql.Result, error) {
	return b.ExecuteContext(context.Background())
}

// ExecuteContext runs the batch. Executing an empty batch is a no-op and
// produces no logger calls. On failure the returned results cover the
// elements completed before the failing one.
func (b *Batch) ExecuteContext(ctx context.Context) ([]sql.Result, error) {
	if len(b.stmts) == 0 {
		return nil, nil
	}

	sc := b.s.newStatementContext(KindBatch, "")

	results := make([]sql.Result, 0, len(b.stmts))
	failedAt := -1

	err := b.s.observe(sc, func() error {
		for i, qry := range b.stmts {
			res, xerr := b.s.sqldb.ExecContext(ctx, qry)
			if xerr != nil {
				failedAt = i
				return xerr
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return results, wrapBatchError(len(b.stmts), failedAt, err)
	}

	return results, nil
}

// PreparedBatch executes one prepared statement with multiple bind sets as a
// single execution attempt. Same logger shape as Batch: one before call, one
// terminal call, no statement text attached.
type PreparedBatch struct {
	s     *Session
	stmt  *Stmt
	binds [][]interface{}
}

// Bind appends one set of statement arguments.
func (pb *PreparedBatch) Bind(args ...interface{}) *PreparedBatch {
	pb.binds = append(pb.binds, args)
	return pb
}

func (pb *PreparedBatch) Len() int {
	return len(pb.binds)
}

// Err returns statement preparation error if there was one.
func (pb *PreparedBatch) Err() error {
	return pb.stmt.Err()
}

func (pb *PreparedBatch) Execute() ([]sql.Result, error) {
	return pb.ExecuteContext(context.Background())
}

// ExecuteContext runs the prepared batch. Preparation failure surfaces here
// without any logger calls, the attempt never dispatched.
func (pb *PreparedBatch) ExecuteContext(ctx context.Context) ([]sql.Result, error) {
	if err := pb.stmt.Err(); err != nil {
		return nil, err
	}
	if len(pb.binds) == 0 {
		return nil, nil
	}

	sc := pb.s.newStatementContext(KindPreparedBatch, "")

	results := make([]sql.Result, 0, len(pb.binds))
	failedAt := -1

	err := pb.s.observe(sc, func() error {
		for i, args := range pb.binds {
			res, xerr := pb.stmt.sqlStmt.ExecContext(ctx, args...)
			if xerr != nil {
				failedAt = i
				return xerr
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return results, wrapBatchError(len(pb.binds), failedAt, err)
	}

	return results, nil
}
