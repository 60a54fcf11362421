package sqlog

import (
	"database/sql"

	"github.com/axkit/errors"
	"github.com/lib/pq"
)

var ErrUnknownPreparedStatement = errors.New("unknown prepared statement")

// wrapPrepareError wraps statement preparation failure. Preparation happens
// before dispatch, so such errors never reach the statement logger.
func wrapPrepareError(qry string, err error) error {
	ce := errors.Catch(err).
		Set("query", qry).
		Severity(errors.Critical)

	if pe, ok := err.(*pq.Error); ok {
		ce.Set("code", pe.Code)
		ce.Set("name", pe.Code.Name())
	}

	return ce.Msg("sqlog: prepare sql statement failed")
}

// wrapExecError wraps a driver error raised by statement execution. The
// statement logger has already received the raw err by the time it is
// wrapped here.
func wrapExecError(qry string, err error, args ...interface{}) error {
	ce := errors.Catch(err).
		Severity(errors.Medium).
		StatusCode(500)

	if qry != "" {
		ce.Set("query", qry)
	}
	if len(args) > 0 {
		ce.SetVals("params", args...)
	}
	if pe, ok := err.(*pq.Error); ok {
		ce.Set("code", pe.Code)
		ce.Set("constraint", pe.Constraint)
	}

	return ce.Msg("sqlog: sql exec failed")
}

func wrapQueryError(qry string, err error, args ...interface{}) error {
	ce := errors.Catch(err).
		Set("query", qry).
		Severity(errors.Critical).
		StatusCode(500)

	if len(args) > 0 {
		ce.SetVals("params", args...)
	}
	if pe, ok := err.(*pq.Error); ok {
		ce.Set("code", pe.Code)
		ce.Set("constraint", pe.Constraint)
	}

	return ce.Msg("sqlog: sql query failed")
}

func wrapBatchError(size, failedAt int, err error) error {
	ce := errors.Catch(err).
		Severity(errors.Medium).
		StatusCode(500).
		Set("batch_size", size).
		Set("failed_at", failedAt)

	if pe, ok := err.(*pq.Error); ok {
		ce.Set("code", pe.Code)
		ce.Set("constraint", pe.Constraint)
	}

	return ce.Msg("sqlog: batch exec failed")
}

func wrapTxError(err error, msg string) error {
	return errors.Catch(err).StatusCode(500).Msg(msg)
}

// parseError maps row reading errors to the caller-facing form.
func parseError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return errors.NotFound("rows not found")
	}
	return errors.Catch(err).Severity(errors.Critical).StatusCode(500)
}
