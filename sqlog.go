package sqlog

import (
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	// подключаем реализацию драйвера postgresql.
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Session wraps database/sql and makes every executed statement observable
// through a StatementLogger. PostgreSQL RDBMS is supported primarly.
type Session struct {
	sqldb *sql.DB

	mux sync.RWMutex

	// ps holds prepared statements identified by name.
	ps map[string]*Stmt

	// id holds unique session identifier, attached to every log line.
	id string

	logger zerolog.Logger

	// obs is the single statement logger configured for the session.
	obs StatementLogger

	// txSeq holds transaction number for output to log.
	txSeq uint64

	stmtSeq uint64
}

// Option customizes a Session at construction time.
type Option func(*Session)

// WithStatementLogger sets the statement logger invoked on every execution
// attempt. A session holds exactly one; the last option wins.
func WithStatementLogger(sl StatementLogger) Option {
	return func(s *Session) {
		if sl != nil {
			s.obs = sl
		}
	}
}

// WithLogger sets the zerolog logger used by the session itself.
func WithLogger(l *zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l.With().Str("layer", "db").Str("session", s.id).Logger()
	}
}

// Open tries once to establish connection to database.
func Open(driverName, dataSourceName string, opts ...Option) (*Session, error) {
	s, err := open(driverName, dataSourceName, opts...)
	if err == nil {
		err = s.Ping()
	}

	return s, err
}

func open(driverName, dataSourceName string, opts ...Option) (*Session, error) {
	s := &Session{
		ps:  make(map[string]*Stmt),
		id:  uuid.New().String(),
		obs: NopStatementLogger{},
	}

	for i := range opts {
		opts[i](s)
	}

	var err error
	s.sqldb, err = sql.Open(driverName, dataSourceName)

	return s, err
}

// Inherit creates Session object using already existing sql.DB object.
func Inherit(db *sql.DB, opts ...Option) *Session {
	s := &Session{
		sqldb: db,
		ps:    make(map[string]*Stmt),
		id:    uuid.New().String(),
		obs:   NopStatementLogger{},
	}

	for i := range opts {
		opts[i](s)
	}

	return s
}

// RetryOpen tries to establish connection to database till ctx.Done() or
// success. It calls func aff() after every failed attempt, the returned
// duration is a pause before the next attempt.
func RetryOpen(ctx context.Context, driverName, dataSourceName string, aff func(string, int, error) time.Duration, opts ...Option) (*Session, error) {

	a := 0
	dur := time.Second

	for {
		s, err := open(driverName, dataSourceName, opts...)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, time.Second)
			err = s.PingContext(pctx)
			cancel()
			if err == nil {
				return s, nil
			}
			_ = s.Close()
		}
		a++
		if aff != nil {
			dur = aff(dataSourceName, a, err)
		}
		select {
		case <-ctx.Done():
			return nil, context.Canceled
		case <-time.After(dur):
		}
	}
}

func (s *Session) Close() error {
	return s.sqldb.Close()
}

func (s *Session) Ping() error {
	return s.ping(context.Background())
}

func (s *Session) PingContext(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Session) ping(ctx context.Context) error {
	return s.sqldb.PingContext(ctx)
}

// ID returns unique session identifier.
func (s *Session) ID() string {
	return s.id
}

func calcHash(buf []byte) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(buf)))
}

// Prepare prepares SQL statement. Unique statement name is hash generated.
func (s *Session) Prepare(qry string) *Stmt {
	return s.prepareContext(context.Background(), calcHash([]byte(qry)), qry)
}

// PrepareN prepares SQL statement. Parameter uid holds user defined unique statement name.
func (s *Session) PrepareN(qry, uid string) *Stmt {
	return s.prepareContext(context.Background(), uid, qry)
}

// PrepareContext prepares SQL statement. Unique statement name is hash generated.
func (s *Session) PrepareContext(ctx context.Context, qry string) *Stmt {
	return s.prepareContext(ctx, calcHash([]byte(qry)), qry)
}

// PrepareContextN prepares statement referenced by unique name. Later,
// prepared statement can be taken from cache by uid.
// It's expected that SQL parameters are always used for performance reasons.
func (s *Session) PrepareContextN(ctx context.Context, qry, uid string) *Stmt {
	return s.prepareContext(ctx, uid, qry)
}

func (s *Session) Stmt(uid string) (*Stmt, bool) {
	s.mux.RLock()
	st, ok := s.ps[uid]
	s.mux.RUnlock()
	if ok {
		return st, true
	}
	return nil, false
}

func (s *Session) prepareContext(ctx context.Context, uid string, qry string) *Stmt {

	s.mux.RLock()
	st, ok := s.ps[uid]
	if ok {
		s.mux.RUnlock()
		return st
	}

	s.mux.RUnlock()

	qry = strings.Trim(qry, "\n\t")

	stmt := newStmt(ctx, s, uid, qry)
	if stmt.Err() != nil {
		return stmt
	}

	s.mux.Lock()
	s.ps[uid] = stmt
	s.mux.Unlock()

	return stmt
}

func (s *Session) delStmt(uid string) {
	s.mux.Lock()
	delete(s.ps, uid)
	s.mux.Unlock()
}

func (s *Session) SQLDB() *sql.DB {
	return s.sqldb
}

func (s *Session) nextTxNum() uint64 {
	return atomic.AddUint64(&s.txSeq, 1)
}

func (s *Session) nextStmtNum() uint64 {
	return atomic.AddUint64(&s.stmtSeq, 1)
}

func (s *Session) BeginTx(ctx context.Context, opts *sql.TxOptions) *Tx {
	return newTx(ctx, opts, s, s.nextTxNum())
}

func (s *Session) Begin() *Tx {
	return newTx(context.Background(), nil, s, s.nextTxNum())
}

func (s *Session) Logger() *zerolog.Logger {
	return &s.logger
}

// StatementLogger returns the statement logger configured for the session.
func (s *Session) StatementLogger() StatementLogger {
	return s.obs
}

func (s *Session) PreparedStatementCount() int {
	s.mux.RLock()
	cnt := len(s.ps)
	s.mux.RUnlock()
	return cnt
}

// CleanUnusedStatements closes prepared statements not used last d.
func (s *Session) CleanUnusedStatements(d time.Duration) {

	var arr []*Stmt
	s.mux.RLock()
	for _, st := range s.ps {
		arr = append(arr, st)
	}
	s.mux.RUnlock()

	now := time.Now().Unix()

	for i := range arr {
		if now-arr[i].LastInstanceUnixTime() > int64(d.Seconds()) {
			_ = arr[i].Close()
		}
	}
}

func (s *Session) Query(qry string, args ...interface{}) *Instance {
	return s.Prepare(qry).Instance().Query(args...)
}

func (s *Session) QueryContext(ctx context.Context, qry string, args ...interface{}) *Instance {
	return s.PrepareContext(ctx, qry).Instance().QueryContext(ctx, args...)
}

func (s *Session) QueryRow(qry string, args ...interface{}) *Instance {
	return s.QueryRowContext(context.Background(), qry, args...)
}

func (s *Session) QueryRowContext(ctx context.Context, qry string, args ...interface{}) *Instance {
	return s.PrepareContext(ctx, qry).Instance().QueryRowContext(ctx, args...)
}

func (s *Session) Exec(qry string, args ...interface{}) (sql.Result, error) {
	return s.PrepareContext(context.Background(), qry).Instance().Exec(args...)
}

func (s *Session) ExecContext(ctx context.Context, qry string, args ...interface{}) (sql.Result, error) {
	return s.PrepareContext(ctx, qry).Instance().ExecContext(ctx, args...)
}

// CreateBatch returns an empty statement batch.
func (s *Session) CreateBatch() *Batch {
	return &Batch{s: s}
}

// PrepareBatch prepares a statement to be executed with multiple bind sets
// as a single attempt.
func (s *Session) PrepareBatch(qry string) *PreparedBatch {
	return s.PrepareBatchContext(context.Background(), qry)
}

func (s *Session) PrepareBatchContext(ctx context.Context, qry string) *PreparedBatch {
	return &PreparedBatch{s: s, stmt: s.PrepareContext(ctx, qry)}
}

// Sequence returns database sequence access object.
func (s *Session) Sequence(name string) *Sequence {
	return NewSequence(s, name)
}

func (s *Session) InTx(f func(*Tx) error) error {
	tx := s.Begin()
	if err := tx.Err(); err != nil {
		return wrapTxError(err, "sqlog: begin tx failed")
	}

	if err := f(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Err(); err != nil {
		return err
	}

	return nil
}
