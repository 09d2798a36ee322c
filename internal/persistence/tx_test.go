package persistence

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestTxManager_CommitsOnSuccess(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO comments`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE tickets`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		q := QuerierFromCtx(ctx, mock)
		if _, err := q.Exec(ctx, "INSERT INTO comments DEFAULT VALUES"); err != nil {
			return err
		}
		_, err := q.Exec(ctx, "UPDATE tickets SET status = 'resolved'")
		return err
	})
	require.NoError(t, err)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	mock := newMock(t)
	failure := errors.New("append failed")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		return failure
	})
	assert.ErrorIs(t, err, failure)
}

func TestTxManager_FailedRollbackKeepsOriginalError(t *testing.T) {
	mock := newMock(t)
	lost := errorutil.NewConcurrentModification("ticket", nil)
	rbErr := errors.New("conn closed")
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(rbErr)

	err := NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		return lost
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errorutil.ErrConcurrentModification)
	assert.ErrorIs(t, err, errorutil.ErrInvalidState)
	assert.ErrorIs(t, err, rbErr)
	assert.Equal(t, errorutil.CodeConcurrentModification, errorutil.ToDomainError(err).Code)
}

func TestTxManager_NestedCallJoinsOuterTransaction(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tm := NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return tm.RunInTx(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
}

func TestTxManager_RollsBackOnPanic(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error {
			panic("boom")
		})
	})
}

func TestQuerierFromCtxWithoutTx(t *testing.T) {
	mock := newMock(t)
	assert.Equal(t, Querier(mock), QuerierFromCtx(context.Background(), mock))
}
