package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"washit/backend/internal/service"
	pkgerrors "washit/backend/pkg/errors"
	"washit/backend/pkg/response"
)

// StaffCodeHandler 员工注册码模块 HTTP 处理器
type StaffCodeHandler struct {
	staffCodeSvc service.StaffCodeService
}

// NewStaffCodeHandler 创建 StaffCodeHandler
func NewStaffCodeHandler(staffCodeSvc service.StaffCodeService) *StaffCodeHandler {
	return &StaffCodeHandler{staffCodeSvc: staffCodeSvc}
}

// IssueCode 签发新注册码（管理员）
// POST /api/v1/admin/staff-codes
func (h *StaffCodeHandler) IssueCode(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	code, err := h.staffCodeSvc.Issue(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrCodeExhausted) {
			response.Error(c, http.StatusServiceUnavailable, 14003, "注册码分配失败，请重试")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, code)
}

// ListCodes 注册码列表（管理员）
// GET /api/v1/admin/staff-codes
func (h *StaffCodeHandler) ListCodes(c *gin.Context) {
	codes, err := h.staffCodeSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, codes)
}

// ValidateCode 注册前预校验注册码（免认证）
// GET /api/v1/auth/staff-codes/:code
func (h *StaffCodeHandler) ValidateCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, 10001, "注册码不能为空")
		return
	}

	if err := h.staffCodeSvc.Validate(c.Request.Context(), code); err != nil {
		switch {
		case errors.Is(err, service.ErrStaffCodeNotFound):
			response.NotFound(c, 14001, "注册码不存在")
		case errors.Is(err, pkgerrors.ErrStaffCodeUsed):
			response.Conflict(c, 14002, "注册码已被使用")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/staff_code_handler.go
