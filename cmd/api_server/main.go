package main

import (
	"fmt"
	"net/http"

	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/app"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/logger"
	"github.com/gin-gonic/gin"

	"github.com/lapatisseriex/La-Patisserie-sub001/api/middleware"
	v1 "github.com/lapatisseriex/La-Patisserie-sub001/api/v1"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao/mysql"
	redisinit "github.com/lapatisseriex/La-Patisserie-sub001/internal/dao/redis"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/mq"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/utils"
)

func main() {
	// 加载配置
	cfg := app.BootstrapApp()

	// 设置Gin模式
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// DB
	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("连接Mysql数据库失败", "err", err)
	}
	if err := mysql.Migrate(db); err != nil {
		logger.Fatal("自动建表失败", "err", err)
	}

	// Redis 不可用时派单退回纯数据库锁
	rdb, err := redisinit.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Warn("连接Redis失败 派单锁降级为数据库行锁", "err", err)
		rdb = nil
	}

	// MQ 不可用时跳过派送通知
	mqPool, err := mq.Init(&cfg.MQ)
	if err != nil {
		logger.Warn("init mq failed, dispatch notifications disabled", "err", err)
		mqPool = nil
	} else if err := mqPool.EnsureBaseTopology(); err != nil {
		logger.Warn("ensure mq topology failed", "err", err)
	}

	// DAO
	authDao := dao.NewAuthDao(db)
	orderDao := dao.NewOrderDao(db)
	productDao := dao.NewProductDao(db)
	hostelDao := dao.NewHostelDao(db)
	notificationDao := dao.NewNotificationDao(db)
	analyticsDao := dao.NewAnalyticsDao(db)

	// Service
	authService := service.NewAuthService(authDao, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	orderService := service.NewOrderService(orderDao, productDao, notificationDao)
	productService := service.NewProductService(productDao)
	registryService := service.NewRegistryService(hostelDao)
	reconcileService := service.NewReconcileService(orderDao, hostelDao)
	dispatchService := service.NewDispatchService(orderDao, hostelDao, notificationDao, rdb, mqPool,
		cfg.Dispatch.LockTTLSeconds, cfg.Dispatch.GroupCacheTTLSeconds, cfg.Dispatch.OverfetchFactor)
	analyticsService := service.NewAnalyticsService(analyticsDao)

	// 初始化Gin引擎
	r := gin.Default()

	// 全局限流中间件
	r.Use(middleware.GlobalRateLimit(cfg))

	// 健康检查接口
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "La Patisserie API is running",
		})
	})

	// JWT 工具
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// 创建处理器实例
	authHandler := v1.NewAuthHandler(authService)
	orderHandler := v1.NewOrderHandler(orderService)
	productHandler := v1.NewProductHandler(productService)
	registryHandler := v1.NewRegistryHandler(registryService)
	adminOrderHandler := v1.NewAdminOrderHandler(dispatchService, reconcileService, orderService, cfg.Reconciler.BatchSize)
	analyticsHandler := v1.NewAnalyticsHandler(analyticsService)

	// 定义API路由组
	api := r.Group("/api/v1")
	{
		// 无需认证：注册/登录 + 商品目录 + 配送范围查询
		authHandler.RegisterRoutes(api)
		productHandler.RegisterPublicRoutes(api)
		registryHandler.RegisterPublicRoutes(api)

		// 顾客路由（需要JWT认证 + 下单限流）
		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(jwtUtil))
		protected.Use(middleware.OrderRateLimit(cfg))
		{
			orderHandler.RegisterRoutes(protected)
		}

		// 管理端路由（JWT + admin角色）
		admin := api.Group("")
		admin.Use(middleware.JWTAuthMiddleware(jwtUtil))
		admin.Use(middleware.AdminRequired())
		admin.Use(middleware.DispatchRateLimit(cfg))
		{
			adminOrderHandler.RegisterRoutes(admin)
			registryHandler.RegisterAdminRoutes(admin)
			analyticsHandler.RegisterRoutes(admin)
		}
	}

	// 启动服务器
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("API server starting on " + serverAddr)
	if err := r.Run(serverAddr); err != nil {
		logger.Error("Failed to start API server: ", "err", err)
	}
}
