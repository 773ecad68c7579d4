package repository

import (
	"context"

	"fraudpipeline/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlertRepository 风控告警表
type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// InsertIgnoreConflicts 插入一批告警，transaction_id 冲突的跳过
//
// 【关键点】DO NOTHING 保证首次命中胜出：created_at 只在第一次插入时
// 写入，后续运行再次命中同一交易不会刷新它。并发运行同时首次命中
// 同一 transaction_id 时最多只有一行存活。
// 返回真正新插入的行数（RowsAffected）
func (r *AlertRepository) InsertIgnoreConflicts(ctx context.Context, tx *gorm.DB, candidates []model.AlertCandidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	if tx == nil {
		tx = r.db
	}

	rows := make([]*model.AlertRow, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, &model.AlertRow{
			TransactionID: c.TransactionID,
			Amount:        c.Amount,
			RiskScore:     c.RiskScore,
			FlaggedReason: c.FlaggedReason,
		})
	}

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).CreateInBatches(rows, writeBatchSize)

	return result.RowsAffected, result.Error
}

// GetByTransactionID 查询单条告警
func (r *AlertRepository) GetByTransactionID(ctx context.Context, transactionID string) (*model.AlertRow, error) {
	var row model.AlertRow
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 分页查询告警，最新的在前
func (r *AlertRepository) List(ctx context.Context, page, pageSize int) ([]*model.AlertRow, int64, error) {
	var rows []*model.AlertRow
	var total int64

	query := r.db.WithContext(ctx).Model(&model.AlertRow{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error

	return rows, total, err
}
