package model

// Item 可洗衣物目录表 — 对应 items
// 静态参照数据，核心逻辑只读
type Item struct {
	ID   uint   `gorm:"primaryKey"                             json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

// TableName 指定表名
func (Item) TableName() string { return "items" }
