package calculator

import "errors"

// 引擎错误均可由调用方恢复：丢弃本次更新，保留之前的步骤列表与收入目标
var (
	ErrNotFound       = errors.New("step not found")
	ErrInvalidEdit    = errors.New("entry step conversion is fixed at 100%")
	ErrDivisionByZero = errors.New("division by zero")
	ErrNoOpChange     = errors.New("conversion change within tolerance")
	ErrInvalidValue   = errors.New("invalid value")
	ErrInvalidConfig  = errors.New("invalid funnel config")
)

// KindOf 返回错误类别，供展示层决定是否提示
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidEdit):
		return "invalid_edit"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrNoOpChange):
		return "no_op_change"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	default:
		return "internal"
	}
}
