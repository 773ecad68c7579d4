package handler

import (
	"fraudpipeline/internal/config"
	"fraudpipeline/internal/queue"
	"fraudpipeline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, producer queue.Producer, trigger service.Trigger, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, producer, trigger)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 交易接入（写路径需要令牌）
		txns := api.Group("/transactions")
		{
			txns.POST("", AuthMiddleware(cfg.Server.APIToken), h.EnqueueTransaction)
			txns.POST("/batch", AuthMiddleware(cfg.Server.APIToken), h.EnqueueBatch)
			txns.GET("", h.ListTransactions)
		}

		// 告警查询（仪表盘数据源）
		api.GET("/alerts", h.ListAlerts)
	}

	// 健康检查
	r.GET("/health", h.Health)

	return r
}
