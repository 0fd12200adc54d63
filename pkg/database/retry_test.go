package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"skillquest_backend/internal/util"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(driver.ErrBadConn))
	assert.True(t, IsTransient(fmt.Errorf("query: %w", mysql.ErrInvalidConn)))
	assert.True(t, IsTransient(fmt.Errorf("read: %w", syscall.ECONNRESET)))
	assert.True(t, IsTransient(errors.New("write tcp 10.0.0.1:3306: connection reset by peer")))

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("duplicate key")))
	assert.False(t, IsTransient(util.ErrStudentNotFound))
}

func TestWithRetry_RetriesTransientOnce(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return driver.ErrBadConn
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_GivesUpAfterSecondFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return driver.ErrBadConn
	})

	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, util.ErrStorageUnavailable)
}

func TestWithRetry_DoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return util.ErrStudentNotFound
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}
