package model

import (
	"time"
)

// ============================================================================
// 交易与告警实体
// ============================================================================

const (
	DefaultLocation = "USA"
	DefaultDevice   = "Web"
)

// 静态风控规则：金额阈值（含）、命中后的风险分与原因
const (
	FraudAmountThreshold  = 10000.0
	FraudRiskScore        = 90
	FraudReasonHighAmount = "high_amount"
)

// Transaction 单笔交易
// 生命周期只有一次批处理运行：从队列或次级数据源进入工作集，
// 落库为 LedgerRow / AlertRow 之后即被丢弃
type Transaction struct {
	TransactionID string  `json:"transaction_id" binding:"required,min=3"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Location      string  `json:"location"`
	Device        string  `json:"device"`
}

// ApplyDefaults 补齐缺省的地域和设备
func (t *Transaction) ApplyDefaults() {
	if t.Location == "" {
		t.Location = DefaultLocation
	}
	if t.Device == "" {
		t.Device = DefaultDevice
	}
}

// AlertCandidate 分类器判定出的可疑交易，尚未落库
type AlertCandidate struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	RiskScore     int     `json:"risk_score"`
	FlaggedReason string  `json:"flagged_reason"`
}

// ============================================================================
// 持久化实体
// ============================================================================

// LedgerRow 全量交易台账
// 每个 transaction_id 只有一行，重复处理时按运行顺序覆盖（last-write-wins），
// processed_at 每次覆盖都会刷新
type LedgerRow struct {
	TransactionID string    `gorm:"type:varchar(64);primaryKey" json:"transaction_id"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Location      string    `gorm:"type:varchar(64)" json:"location"`
	Device        string    `gorm:"type:varchar(32)" json:"device"`
	ProcessedAt   time.Time `gorm:"not null" json:"processed_at"`
	IsFlagged     bool      `gorm:"not null" json:"is_flagged"`
	RiskScore     *int      `json:"risk_score"`
	FlaggedReason *string   `gorm:"type:varchar(64)" json:"flagged_reason"`
}

func (LedgerRow) TableName() string {
	return "transactions_all"
}

// AlertRow 风控告警表
//
// 【重要】告警表只插入，不更新：
// 1. conflict 时 DO NOTHING —— 首次命中为准，created_at 永不刷新
// 2. 后续运行即使同一交易被改判为不命中，历史告警依然保留
// 3. transaction_id 唯一，逻辑上引用台账行（先写台账再写告警，不做硬外键）
type AlertRow struct {
	AlertID       int64     `gorm:"primaryKey;autoIncrement" json:"alert_id"`
	TransactionID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	Amount        float64   `gorm:"not null" json:"amount"`
	RiskScore     int       `gorm:"not null;check:risk_score >= 0 AND risk_score <= 100" json:"risk_score"`
	FlaggedReason string    `gorm:"type:varchar(64);not null" json:"flagged_reason"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AlertRow) TableName() string {
	return "fraud_alerts"
}
