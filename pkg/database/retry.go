package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"skillquest_backend/internal/util"
	"skillquest_backend/pkg/logger"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// 连接类错误只重试一次
const (
	maxStorageTries   = 2
	storageRetryDelay = 50 * time.Millisecond
)

// IsTransient 判断是否是可重试的连接类错误
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "bad connection")
}

// WithRetry 执行一次存储操作；连接断开时原样重试一次，仍失败则返回 ErrStorageUnavailable。
// 非连接类错误直接返回，不重试。
func WithRetry(ctx context.Context, op func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := op(); err != nil {
			if IsTransient(err) {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(storageRetryDelay)),
		backoff.WithMaxTries(maxStorageTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			logger.Log.Warn("transient storage error, retrying", zap.Error(err), zap.Duration("delay", d))
		}),
	)

	if err != nil && IsTransient(err) {
		return fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	return err
}
