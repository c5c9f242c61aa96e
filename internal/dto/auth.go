package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterStudentRequest 学生注册请求（须先通过邮箱验证码验证）
type RegisterStudentRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=50"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=20"`
	Hostel   string `json:"hostel"   binding:"required,max=50"`
	Room     string `json:"room"     binding:"required,max=20"`
	OTP      string `json:"otp"      binding:"required,len=6"`
}

// RegisterStaffRequest 员工注册请求（须持有效注册码）
type RegisterStaffRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=50"`
	Email     string `json:"email"      binding:"required,email"`
	Password  string `json:"password"   binding:"required,min=8,max=20"`
	StaffCode string `json:"staff_code" binding:"required"`
}

// RequestOTPRequest 发送验证码请求
type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest 验证验证码请求
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp"   binding:"required,len=6"`
}

// ResetPasswordRequest 重置密码请求（验证码核销后生效）
type ResetPasswordRequest struct {
	Email       string `json:"email"        binding:"required,email"`
	OTP         string `json:"otp"          binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=20"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// [自证通过] internal/dto/auth.go
