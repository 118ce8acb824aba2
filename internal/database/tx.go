package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"gorm.io/gorm"
)

// RunInTx 在单个事务中执行 fn
//
// lockTimeout 大于 0 时限定整个事务的等待时间;PostgreSQL 上同时设置
// SET LOCAL lock_timeout,等待行锁超时的事务整体回滚。
func RunInTx(ctx context.Context, db *gorm.DB, lockTimeout time.Duration, fn func(tx *gorm.DB) error) error {
	if lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lockTimeout)
		defer cancel()
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if lockTimeout > 0 && tx.Dialector.Name() == DriverPostgres {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
	if _, ok := apperror.As(err); ok {
		return err
	}
	if err != nil && ctx.Err() != nil {
		return TranslateError(fmt.Errorf("%w: %v", context.DeadlineExceeded, err), "")
	}
	return TranslateError(err, "")
}
