package repository

import (
	"context"
	"time"

	"fraudpipeline/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 多行写入的分批大小
const writeBatchSize = 100

// LedgerRepository 全量交易台账表
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Upsert 按 transaction_id 原子 upsert 一批台账行
//
// 【关键点】单条语句内完成 insert-or-update（ON DUPLICATE KEY UPDATE），
// 并发运行对同一 transaction_id 竞争时不会丢更新、也不会唯一键冲突报错。
// 同一批内重复的 transaction_id 按出现顺序依次生效，最后一行胜出
func (r *LedgerRepository) Upsert(ctx context.Context, tx *gorm.DB, rows []*model.LedgerRow) error {
	if len(rows) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		UpdateAll: true,
	}).CreateInBatches(rows, writeBatchSize).Error
}

// GetByTransactionID 查询单行台账
func (r *LedgerRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.LedgerRow, error) {
	var row model.LedgerRow
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 分页查询台账，flaggedOnly 为 true 时只返回命中风控的行
func (r *LedgerRepository) List(ctx context.Context, flaggedOnly bool, page, pageSize int) ([]*model.LedgerRow, int64, error) {
	var rows []*model.LedgerRow
	var total int64

	query := r.db.WithContext(ctx).Model(&model.LedgerRow{})
	if flaggedOnly {
		query = query.Where("is_flagged = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("processed_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error

	return rows, total, err
}

// BuildLedgerRows 把工作集折算成台账行
// is_flagged 由该交易是否出现在告警候选里决定，processed_at 统一取运行时间
func BuildLedgerRows(txns []model.Transaction, candidates []model.AlertCandidate, processedAt time.Time) []*model.LedgerRow {
	lookup := make(map[string]model.AlertCandidate, len(candidates))
	for _, c := range candidates {
		lookup[c.TransactionID] = c
	}

	rows := make([]*model.LedgerRow, 0, len(txns))
	for _, txn := range txns {
		row := &model.LedgerRow{
			TransactionID: txn.TransactionID,
			Amount:        txn.Amount,
			Location:      txn.Location,
			Device:        txn.Device,
			ProcessedAt:   processedAt,
		}
		if c, ok := lookup[txn.TransactionID]; ok {
			risk := c.RiskScore
			reason := c.FlaggedReason
			row.IsFlagged = true
			row.RiskScore = &risk
			row.FlaggedReason = &reason
		}
		rows = append(rows, row)
	}
	return rows
}
