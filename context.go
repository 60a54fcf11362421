package sqlog

import (
	"time"
)

// StatementKind describes the shape of an execution attempt.
type StatementKind int

const (
	// KindStatement - single statement executed on its own.
	KindStatement StatementKind = iota
	// KindBatch - set of raw statements submitted as one attempt.
	KindBatch
	// KindPreparedBatch - prepared statement executed with multiple bind sets
	// as one attempt.
	KindPreparedBatch
)

func (k StatementKind) String() string {
	switch k {
	case KindStatement:
		return "statement"
	case KindBatch:
		return "batch"
	case KindPreparedBatch:
		return "prepared_batch"
	}
	return ""
}

// StatementContext describes one in-flight execution attempt. The session
// creates it right before dispatch, mutates it as the attempt goes through
// its phases and drops it after the terminal phase. Statement loggers receive
// it read-only and must not retain it beyond the callback.
type StatementContext struct {
	kind StatementKind

	// rawSQL holds statement text. Empty for batch and prepared batch
	// attempts: the session tracks aggregate batch identity only, not
	// per-element text.
	rawSQL string

	// num holds attempt sequential number within the session.
	num uint64

	startedAt time.Time
	elapsed   time.Duration
	concluded bool

	// failure holds the driver-level error, set on the exception phase only.
	failure error
}

func (s *Session) newStatementContext(kind StatementKind, rawSQL string) *StatementContext {
	return &StatementContext{kind: kind, rawSQL: rawSQL, num: s.nextStmtNum()}
}

func (sc *StatementContext) Kind() StatementKind {
	return sc.kind
}

// RawSQL returns statement text of the attempt. Returns "" for batch and
// prepared batch attempts.
func (sc *StatementContext) RawSQL() string {
	return sc.rawSQL
}

// Num returns attempt sequential number since the session start.
func (sc *StatementContext) Num() uint64 {
	return sc.num
}

// StartedAt returns time when the attempt was submitted to the driver.
// Zero before dispatch.
func (sc *StatementContext) StartedAt() time.Time {
	return sc.startedAt
}

// ElapsedTime returns duration between dispatch and conclusion of the
// attempt. Populated on the terminal phase only, see Concluded.
func (sc *StatementContext) ElapsedTime() time.Duration {
	return sc.elapsed
}

// Concluded reports whether the attempt reached its terminal phase.
func (sc *StatementContext) Concluded() bool {
	return sc.concluded
}

// Failure returns the driver-level error of a failed attempt, nil otherwise.
func (sc *StatementContext) Failure() error {
	return sc.failure
}
