package repository

import (
	"context"

	"gorm.io/gorm"

	"washit/backend/internal/model"
)

// ItemRepository 衣物目录数据访问接口（核心逻辑只读）
type ItemRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepo 创建 ItemRepository 实例
func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) GetByID(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).Order("id").Find(&items).Error
	return items, err
}
