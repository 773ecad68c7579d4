package handler

import (
	"strconv"

	"fraudpipeline/internal/model"
	"fraudpipeline/internal/queue"
	"fraudpipeline/internal/repository"
	"fraudpipeline/internal/service"
	"fraudpipeline/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	ingestService *service.IngestService
	ledgerRepo    *repository.LedgerRepository
	alertRepo     *repository.AlertRepository
	redisClient   *redis.Client
	db            *gorm.DB
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, producer queue.Producer, trigger service.Trigger) *Handler {
	return &Handler{
		ingestService: service.NewIngestService(producer, trigger),
		ledgerRepo:    repository.NewLedgerRepository(db),
		alertRepo:     repository.NewAlertRepository(db),
		redisClient:   rdb,
		db:            db,
	}
}

// ============================================================
// 接入相关接口
// ============================================================

// EnqueueTransaction 单笔交易入队
// POST /api/v1/transactions
func (h *Handler) EnqueueTransaction(c *gin.Context) {
	var txn model.Transaction
	if err := c.ShouldBindJSON(&txn); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.ingestService.Enqueue(c.Request.Context(), txn); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"status":         "enqueued",
		"transaction_id": txn.TransactionID,
	})
}

// EnqueueBatch 批量交易入队
// POST /api/v1/transactions/batch
func (h *Handler) EnqueueBatch(c *gin.Context) {
	var txns []model.Transaction
	if err := c.ShouldBindJSON(&txns); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}
	if len(txns) == 0 {
		response.ParamError(c, "交易列表不能为空")
		return
	}

	if err := h.ingestService.EnqueueBatch(c.Request.Context(), txns); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"status": "enqueued",
		"count":  len(txns),
	})
}

// ============================================================
// 查询相关接口（仪表盘数据源，只读）
// ============================================================

// ListAlerts 查询告警列表，最新的在前
// GET /api/v1/alerts?page=1&page_size=20
func (h *Handler) ListAlerts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	alerts, total, err := h.alertRepo.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list":      alerts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListTransactions 查询台账列表
// GET /api/v1/transactions?flagged=true&page=1&page_size=20
func (h *Handler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	flaggedOnly := c.Query("flagged") == "true"

	rows, total, err := h.ledgerRepo.List(c.Request.Context(), flaggedOnly, page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Health 健康检查：Redis 和 MySQL 都要可达
// GET /health
func (h *Handler) Health(c *gin.Context) {
	if h.redisClient != nil {
		if err := h.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(500, gin.H{"status": "error", "detail": "Redis 不可达: " + err.Error()})
			return
		}
	}
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(500, gin.H{"status": "error", "detail": "MySQL 不可达"})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}
