package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"washit/backend/config"
	"washit/backend/internal/api/handler"
	"washit/backend/internal/api/middleware"
	"washit/backend/internal/model"
	"washit/backend/pkg/jwt"
	"washit/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register/student", h.Auth.RegisterStudent)
			auth.POST("/register/staff", h.Auth.RegisterStaff)
			auth.POST("/otp", middleware.RateLimit(rdb, 3, time.Minute), h.Auth.RequestOTP)
			auth.POST("/reset-password", h.Auth.ResetPassword)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.GET("/staff-codes/:code", h.StaffCode.ValidateCode)
		}

		// 追踪码查询（免认证，凭码即查）
		v1.GET("/orders/track/:code", h.Order.TrackOrder)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 衣物目录
			authorized.GET("/items", h.Order.ListItems)

			// 订单模块
			orders := authorized.Group("/orders")
			{
				orders.POST("", middleware.RoleAuth(model.RoleStudent), h.Order.CreateOrder)
				orders.GET("/my", middleware.RoleAuth(model.RoleStudent), h.Order.ListMyOrders)
				orders.GET("", middleware.RoleAuth(model.RoleStaff, model.RoleAdmin), h.Order.ListOrders)
				orders.GET("/:id", h.Order.GetOrder) // 学生仅自己的订单（Handler 层鉴权）
				orders.PATCH("/:id/status", middleware.RoleAuth(model.RoleStaff, model.RoleAdmin), h.Order.UpdateStatus)
			}

			// 注册码模块（管理员）
			staffCodes := authorized.Group("/admin/staff-codes")
			staffCodes.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				staffCodes.POST("", h.StaffCode.IssueCode)
				staffCodes.GET("", h.StaffCode.ListCodes)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/orders", middleware.RoleAuth(model.RoleStaff, model.RoleAdmin), h.Export.ExportOrders)
			}
		}
	}

	return r
}
