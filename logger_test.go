package sqlog

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/axkit/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTimings(t *testing.T, timings []time.Duration, n int) {
	t.Helper()
	require.Len(t, timings, n)
	for i := range timings {
		assert.True(t, timings[i] >= 0, "timing %d must be non-negative", i)
	}
}

func TestStatement(t *testing.T) {
	rec := &recordingLogger{}
	s, mock := newMockSession(t, WithStatementLogger(rec))
	defer s.Close()

	mock.ExpectPrepare(qryCreate).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(qryInsert).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := s.Exec(qryCreate)
	require.NoError(t, err)
	_, err = s.Exec(qryInsert)
	require.NoError(t, err)

	assert.Equal(t, []string{qryCreate, qryCreate, qryInsert, qryInsert}, rec.rawSQL)
	assertTimings(t, rec.timings, 2)
	assert.Empty(t, rec.failures)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementException(t *testing.T) {
	rec := &recordingLogger{}
	s, mock := newMockSession(t, WithStatementLogger(rec))
	defer s.Close()

	driverErr := fmt.Errorf("pq: null value in column \"bar\" violates not-null constraint")

	mock.ExpectPrepare(qryCreate).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(qryInsertNull).ExpectExec().WillReturnError(driverErr)

	_, err := s.Exec(qryCreate)
	require.NoError(t, err)

	_, err = s.Exec(qryInsertNull)
	require.Error(t, err)

	// caller receives the wrapped error, the logger the original one
	_, ok := err.(*errors.CatchedError)
	assert.True(t, ok, "expected *errors.CatchedError, got %T", err)

	assert.Equal(t, []string{qryCreate, qryCreate, qryInsertNull, qryInsertNull}, rec.rawSQL)
	assertTimings(t, rec.timings, 2)
	require.Len(t, rec.failures, 1)
	assert.Equal(t, driverErr, rec.failures[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatement_NotSQL(t *testing.T) {
	rec := &recordingLogger{}
	s, mock := newMockSession(t, WithStatementLogger(rec))
	defer s.Close()

	mock.ExpectPrepare(qryNotSQL).WillReturnError(fmt.Errorf("pq: syntax error at or near \"herp\""))

	_, err := s.Exec(qryNotSQL)
	require.Error(t, err)

	// rejected before dispatch: no phase reaches the logger
	assert.Empty(t, rec.rawSQL)
	assert.Empty(t, rec.timings)
	assert.Empty(t, rec.failures)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMultiStatementLogger(t *testing.T) {
	rec1 := &recordingLogger{}
	rec2 := &recordingLogger{}
	s, mock := newMockSession(t, WithStatementLogger(NewMultiStatementLogger(rec1, rec2)))
	defer s.Close()

	mock.ExpectPrepare(qryInsert).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := s.Exec(qryInsert)
	require.NoError(t, err)

	assert.Equal(t, []string{qryInsert, qryInsert}, rec1.rawSQL)
	assert.Equal(t, rec1.rawSQL, rec2.rawSQL)
	assertTimings(t, rec1.timings, 1)
	assertTimings(t, rec2.timings, 1)
}

func TestZerologStatementLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)

	s, mock := newMockSession(t, WithStatementLogger(NewZerologStatementLogger(&zl)))
	defer s.Close()

	mock.ExpectPrepare(qryInsert).ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(qryInsertNull).ExpectExec().WillReturnError(fmt.Errorf("pq: boom"))

	_, err := s.Exec(qryInsert)
	require.NoError(t, err)
	_, err = s.Exec(qryInsertNull)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "executing")
	assert.Contains(t, out, "executed")
	assert.Contains(t, out, "execution failed")
	assert.Contains(t, out, "pq: boom")
	assert.Contains(t, out, qryInsert)
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "", FormatArgs())
	assert.Equal(t, "$1=1", FormatArgs(1))
	assert.Equal(t, "$1=1;$2=x", FormatArgs(1, "x"))
}

func TestStatementContext_Accessors(t *testing.T) {
	rec := &recordingLogger{}
	s, mock := newMockSession(t, WithStatementLogger(rec))
	defer s.Close()

	mock.ExpectPrepare(qryInsert)

	in := s.Prepare(qryInsert).Instance()
	sc := in.Context()
	require.NotNil(t, sc)

	assert.Equal(t, KindStatement, sc.Kind())
	assert.Equal(t, qryInsert, sc.RawSQL())
	assert.False(t, sc.Concluded())
	assert.True(t, sc.StartedAt().IsZero())
	assert.Equal(t, uint64(1), sc.Num())
	assert.Nil(t, sc.Failure())
}
