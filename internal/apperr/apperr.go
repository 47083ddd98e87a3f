package apperr

import (
	"errors"
	"fmt"
)

// 业务错误分类：repository/service 返回这些哨兵错误（或其包装），
// 由 pkg/response 在出口处统一翻译成 HTTP 状态码。
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrStorage          = errors.New("storage failure")
)

// NotFoundf 包装 ErrNotFound 并附加上下文。
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Forbiddenf 包装 ErrForbidden 并附加上下文。
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// Invalidf 包装 ErrInvalidOperation 并附加上下文。
func Invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidOperation)...)
}

// Storage 把底层存储错误标记为致命的 StorageFailure。
// 幂等操作的"已处于目标状态"不会走到这里。
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
func IsInvalid(err error) bool   { return errors.Is(err, ErrInvalidOperation) }
