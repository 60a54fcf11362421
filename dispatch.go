package sqlog

import (
	"time"
)

// observe drives one execution attempt through its lifecycle. It fires the
// before callback, runs the attempt, captures elapsed time and fires exactly
// one terminal callback: after on success, exception on driver error. The
// error returned is the raw driver error, callers wrap it afterwards.
//
// Every execution path of the session goes through here, it is the only
// place callbacks are fired from.
func (s *Session) observe(sc *StatementContext, run func() error) error {
	s.obs.LogBeforeExecution(sc)
	sc.startedAt = time.Now()

	err := run()

	sc.elapsed = time.Since(sc.startedAt)
	sc.concluded = true

	if err != nil {
		sc.failure = err
		s.obs.LogException(sc, err)
		return err
	}

	s.obs.LogAfterExecution(sc)
	return nil
}
