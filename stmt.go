package sqlog

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/axkit/errors"
)

// Stmt holds a prepared statement shared between execution attempts.
type Stmt struct {
	s *Session

	// uid holds hash calculated over SQL statement text.
	uid string

	// text holds formatted SQL statement text.
	text string

	sqlStmt *sql.Stmt

	err error

	// lastInstanceTime holds a time when the statement has been instantiated last time.
	lastInstanceTime int64
}

func newStmt(ctx context.Context, s *Session, uid string, qry string) *Stmt {
	st := &Stmt{uid: uid, text: qry, s: s}
	st.sqlStmt, st.err = s.SQLDB().PrepareContext(ctx, qry)
	if st.err != nil {
		st.err = wrapPrepareError(qry, st.err)
	}

	return st
}

// Instance returns an object representing a single execution attempt of the
// prepared statement.
func (st *Stmt) Instance() *Instance {
	if st.err != nil {
		return newInstance(st, nil, st.err)
	}
	in := newInstance(st, st.s.newStatementContext(KindStatement, st.text), nil)
	atomic.StoreInt64(&st.lastInstanceTime, time.Now().Unix())
	return in
}

// InstanceTx returns an execution attempt bound to the transaction tx.
func (st *Stmt) InstanceTx(tx *Tx) *Instance {
	in := st.Instance()
	if in.err == nil {
		in.sqlStmt = tx.SQLTx().Stmt(in.sqlStmt)
		in.tx = tx
	}
	return in
}

func (st *Stmt) Err() error {
	return st.err
}

func (st *Stmt) Close() error {
	st.s.delStmt(st.uid)
	if st.sqlStmt == nil {
		return nil
	}
	if err := st.sqlStmt.Close(); err != nil {
		return errors.Catch(err).Set("query", st.text).Msg("sqlog: sql statement close failed")
	}
	return nil
}

func (st *Stmt) Session() *Session {
	return st.s
}

func (st *Stmt) LastInstanceUnixTime() int64 {
	return atomic.LoadInt64(&st.lastInstanceTime)
}

func (st *Stmt) UID() string {
	return st.uid
}

func (st *Stmt) Text() string {
	return st.text
}
