package repository

import (
	"context"
	"fmt"
	"time"

	"fraudpipeline/internal/infrastructure/database"
	"fraudpipeline/internal/model"

	"gorm.io/gorm"
)

// Store 把台账和告警两张表包成一次运行的持久化门面
// 实现 pipeline.Store
type Store struct {
	db         *gorm.DB
	ledgerRepo *LedgerRepository
	alertRepo  *AlertRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		ledgerRepo: NewLedgerRepository(db),
		alertRepo:  NewAlertRepository(db),
	}
}

// EnsureSchema 幂等建表
func (s *Store) EnsureSchema(ctx context.Context) error {
	return database.EnsureSchema(s.db)
}

// UpsertLedger 把工作集 upsert 进台账表
// 空集是 no-op；同一 transaction_id 跨运行重复调用幂等收敛到最新状态。
// 整批包在一个事务里：分批语句有任何一条失败则整批回滚，
// 不会留下只写了一半的台账
func (s *Store) UpsertLedger(ctx context.Context, txns []model.Transaction, candidates []model.AlertCandidate, processedAt time.Time) error {
	rows := BuildLedgerRows(txns, candidates, processedAt)
	if len(rows) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.ledgerRepo.Upsert(ctx, tx, rows)
	})
	if err != nil {
		return fmt.Errorf("写入台账失败: %w", err)
	}
	return nil
}

// InsertAlerts 插入告警，冲突跳过，返回新插入行数
// 同样整批一个事务。台账和告警之间不做跨表事务：
// 运行在两步之间被杀死时可能台账已更新而告警未插入，这是接受的部分完成风险
func (s *Store) InsertAlerts(ctx context.Context, candidates []model.AlertCandidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	var inserted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := s.alertRepo.InsertIgnoreConflicts(ctx, tx, candidates)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("写入告警失败: %w", err)
	}
	return inserted, nil
}
