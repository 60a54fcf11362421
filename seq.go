package sqlog

import (
	"context"
	"sync/atomic"

	"github.com/axkit/errors"
)

// Sequence describes database object sequence and provides
// method to generate next value. Value fetches are ordinary single
// statements, the statement logger sees each of them.
type Sequence struct {
	s          *Session
	name       string
	nextValSQL string
	lastValue  int64
	isPrepared bool
}

// NewSequence creates Sequence object.
func NewSequence(s *Session, name string) *Sequence {
	return &Sequence{
		s:          s,
		name:       name,
		nextValSQL: "SELECT NEXTVAL('" + name + "')",
	}
}

// CheckExistance checks sequence existance.
func (sq *Sequence) CheckExistance() error {
	if err := sq.s.PrepareN(sq.nextValSQL, sq.name).Err(); err != nil {
		return errors.Catch(err).Severity(errors.Critical).
			Set("seq", sq.name).
			Msg("sqlog: sequence existence check failed")
	}
	sq.isPrepared = true
	return nil
}

// NextVal returns next sequence value.
func (sq *Sequence) NextVal(ctx context.Context) (int64, error) {

	if !sq.isPrepared {
		if err := sq.CheckExistance(); err != nil {
			return 0, err
		}
	}

	// always returns true as second value, because it's prepared above in
	// CheckExistance()
	stmt, _ := sq.s.Stmt(sq.name)

	var result int64
	err := stmt.Instance().QueryRowContext(ctx).Scan(&result)
	if err != nil {
		return 0, errors.Catch(err).
			StatusCode(500).
			Set("seq", sq.name).
			Msg("sqlog: sequence nextval failed")
	}

	atomic.StoreInt64(&sq.lastValue, result)
	return result, nil
}

// LastVal returns the last value fetched by this process. Zero if NextVal
// has not been called yet.
func (sq *Sequence) LastVal() int64 {
	return atomic.LoadInt64(&sq.lastValue)
}
