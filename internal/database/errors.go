package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mautops/timesheet-gin/internal/apperror"
	"gorm.io/gorm"
)

// PostgreSQL 错误码
const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// TranslateError 将数据库错误映射为业务错误
//
// uniqueField 为发生唯一约束冲突时报告的字段名。
// 无法识别的错误原样返回。
func TranslateError(err error, uniqueField string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperror.Error{Kind: apperror.KindValidation, Field: uniqueField, Message: "already exists", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperror.Wrap(apperror.KindConflict, err, "record is still referenced")
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.Wrap(apperror.KindConflict, err, "lock wait exceeded")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable:
			return apperror.Wrap(apperror.KindConflict, err, "lock wait exceeded")
		case pgSerializationFailure, pgDeadlockDetected:
			return apperror.Wrap(apperror.KindConflict, err, "concurrent modification")
		}
	}

	return err
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
