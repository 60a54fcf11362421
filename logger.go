package sqlog

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// StatementLogger observes statement execution attempts. The session invokes
// it synchronously on the calling goroutine: LogBeforeExecution right before
// an attempt is submitted to the driver, then exactly one of
// LogAfterExecution or LogException once the attempt concluded. Attempts
// rejected before dispatch (statement preparation failed) produce no calls
// at all.
//
// Implementations are observers only, they cannot alter execution. A panic
// raised by a logger is not recovered and aborts the in-flight attempt.
// An instance shared between several sessions must be safe for concurrent
// use; within one session calls arrive in statement issuance order.
type StatementLogger interface {
	LogBeforeExecution(sc *StatementContext)

	// LogAfterExecution is invoked after successful completion,
	// sc.ElapsedTime() is populated.
	LogAfterExecution(sc *StatementContext)

	// LogException is invoked when the driver returns an error. The err is
	// the original driver error, not the wrapped one the caller receives.
	LogException(sc *StatementContext, err error)
}

// NopStatementLogger ignores all attempts. It is the default.
type NopStatementLogger struct{}

func (NopStatementLogger) LogBeforeExecution(*StatementContext)  {}
func (NopStatementLogger) LogAfterExecution(*StatementContext)   {}
func (NopStatementLogger) LogException(*StatementContext, error) {}

// ZerologStatementLogger writes every attempt to a zerolog logger.
type ZerologStatementLogger struct {
	l zerolog.Logger
}

func NewZerologStatementLogger(l *zerolog.Logger) *ZerologStatementLogger {
	return &ZerologStatementLogger{l: l.With().Str("layer", "db").Logger()}
}

func (zl *ZerologStatementLogger) LogBeforeExecution(sc *StatementContext) {
	zl.l.Debug().
		Uint64("stmt", sc.Num()).
		Str("kind", sc.Kind().String()).
		Str("sql", sc.RawSQL()).
		Msg("executing")
}

func (zl *ZerologStatementLogger) LogAfterExecution(sc *StatementContext) {
	zl.l.Debug().
		Uint64("stmt", sc.Num()).
		Str("kind", sc.Kind().String()).
		Str("sql", sc.RawSQL()).
		Dur("elapsed", sc.ElapsedTime()).
		Msg("executed")
}

func (zl *ZerologStatementLogger) LogException(sc *StatementContext, err error) {
	zl.l.Error().
		Err(err).
		Uint64("stmt", sc.Num()).
		Str("kind", sc.Kind().String()).
		Str("sql", sc.RawSQL()).
		Dur("elapsed", sc.ElapsedTime()).
		Msg("execution failed")
}

// MultiStatementLogger fans every callback out to several loggers, keeping
// the single-logger-per-session rule while feeding more than one sink.
type MultiStatementLogger struct {
	loggers []StatementLogger
}

func NewMultiStatementLogger(loggers ...StatementLogger) *MultiStatementLogger {
	return &MultiStatementLogger{loggers: loggers}
}

func (ml *MultiStatementLogger) LogBeforeExecution(sc *StatementContext) {
	for i := range ml.loggers {
		ml.loggers[i].LogBeforeExecution(sc)
	}
}

func (ml *MultiStatementLogger) LogAfterExecution(sc *StatementContext) {
	for i := range ml.loggers {
		ml.loggers[i].LogAfterExecution(sc)
	}
}

func (ml *MultiStatementLogger) LogException(sc *StatementContext, err error) {
	for i := range ml.loggers {
		ml.loggers[i].LogException(sc, err)
	}
}

// FormatArgs formats statement arguments for log output.
func FormatArgs(args ...interface{}) string {

	var s, sep string
	for i := range args {
		s += sep + "$" + strconv.Itoa(i+1) + "=" + fmt.Sprintf("%v", args[i])
		sep = ";"
	}
	return s
}
