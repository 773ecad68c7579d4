package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/infrastructure/database"
	"fraudpipeline/internal/model"
	"fraudpipeline/internal/queue"
	"fraudpipeline/internal/repository"
	"fraudpipeline/pkg/idgen"
)

// ============================================================================
// 批处理编排器
// ============================================================================
//
// 一次运行的状态机：
//
//   CONNECTING -> SCHEMA_READY -> COLLECTED -> CLASSIFIED -> PERSISTED -> DONE
//
// 任何非 DONE 状态都可能进入 FAILED。失败时连接依然会被释放（defer 保证
// 所有退出路径），并且该状态未完成的工作不会留下半截的台账/告警写入。

const (
	StateConnecting  = "CONNECTING"
	StateSchemaReady = "SCHEMA_READY"
	StateCollected   = "COLLECTED"
	StateClassified  = "CLASSIFIED"
	StatePersisted   = "PERSISTED"
	StateDone        = "DONE"
	StateFailed      = "FAILED"
)

// Store 持久化能力，一次运行的逻辑工作单元
type Store interface {
	// EnsureSchema 幂等建表
	EnsureSchema(ctx context.Context) error
	// UpsertLedger 把整个工作集 upsert 进台账表，先于告警写入
	UpsertLedger(ctx context.Context, txns []model.Transaction, candidates []model.AlertCandidate, processedAt time.Time) error
	// InsertAlerts 插入告警，conflict 的跳过，返回真正新插入的行数
	InsertAlerts(ctx context.Context, candidates []model.AlertCandidate) (int64, error)
}

// RunLock 可选的互斥运行锁
type RunLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// ConnectFunc 获取本次运行的存储连接，cleanup 在所有退出路径上执行
type ConnectFunc func() (Store, func(), error)

// Summary 运行结果汇总
type Summary struct {
	RunNo             string `json:"run_no"`
	TotalTransactions int    `json:"total_transactions"`
	TotalFlagged      int    `json:"total_flagged"`
	AlertsInserted    int64  `json:"alerts_inserted"`
}

// Runner 批处理编排器，顺序执行：建表 -> 排空队列 -> 合并 -> 分类 -> 落库
type Runner struct {
	drainer *Drainer
	source  *SecondarySource
	connect ConnectFunc
	lock    RunLock // nil 表示不加互斥锁
	state   string
}

// NewRunner 创建面向 MySQL 的编排器
// 数据库连接由每次 Run 自己获取并无条件释放
func NewRunner(cfg *config.Config, consumer queue.Consumer, runLock RunLock) *Runner {
	return &Runner{
		drainer: NewDrainer(consumer, cfg.Queue.DrainMax),
		source:  NewSecondarySource(&cfg.Pipeline),
		lock:    runLock,
		connect: func() (Store, func(), error) {
			db, err := database.Open(&cfg.MySQL)
			if err != nil {
				return nil, nil, err
			}
			return repository.NewStore(db), func() { database.Close(db) }, nil
		},
	}
}

// State 当前（或终止时）的状态，供日志和测试检查
func (r *Runner) State() string {
	return r.state
}

func (r *Runner) fail(err error) error {
	failedAt := r.state
	r.state = StateFailed
	return fmt.Errorf("流水线在 %s 状态失败: %w", failedAt, err)
}

// Run 执行一次完整的批处理
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	runNo := idgen.GenerateRunNo()
	log.Printf("[Pipeline] 运行开始: %s", runNo)

	// CONNECTING：拿不到连接直接失败，不产生任何写入
	r.state = StateConnecting
	store, cleanup, err := r.connect()
	if err != nil {
		return nil, r.fail(err)
	}
	defer cleanup()

	// SCHEMA_READY：幂等建表
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, r.fail(err)
	}
	r.state = StateSchemaReady

	// 可选互斥锁：两个并发运行本身是安全的（原子 upsert），
	// 锁只用于希望串行化运行的部署
	if r.lock != nil {
		acquired, err := r.lock.TryLock(ctx)
		if err != nil {
			return nil, r.fail(err)
		}
		if !acquired {
			return nil, r.fail(fmt.Errorf("另一次运行持有运行锁"))
		}
		defer r.lock.Unlock(ctx)
	}

	// COLLECTED：排空队列 + 加载次级数据源 + 合并
	// 任何一步失败都在写库之前中止
	drained, err := r.drainer.Drain(ctx)
	if err != nil {
		return nil, r.fail(err)
	}
	secondary, err := r.source.Load()
	if err != nil {
		return nil, r.fail(err)
	}
	working := Merge(drained, secondary)
	r.state = StateCollected
	log.Printf("[Pipeline] 本次工作集共 %d 笔交易", len(working))

	// CLASSIFIED：纯函数分类
	candidates := Classify(working)
	r.state = StateClassified
	log.Printf("[Pipeline] 命中风控规则 %d 笔", len(candidates))

	// PERSISTED：先台账后告警，保证告警引用的台账行不会悬空
	processedAt := time.Now()
	if err := store.UpsertLedger(ctx, working, candidates, processedAt); err != nil {
		return nil, r.fail(err)
	}
	inserted, err := store.InsertAlerts(ctx, candidates)
	if err != nil {
		return nil, r.fail(err)
	}
	r.state = StatePersisted

	r.state = StateDone
	summary := &Summary{
		RunNo:             runNo,
		TotalTransactions: len(working),
		TotalFlagged:      len(candidates),
		AlertsInserted:    inserted,
	}
	log.Printf("[Pipeline] 运行完成: %s, 处理 %d 笔, 命中 %d 笔, 新告警 %d 条",
		runNo, summary.TotalTransactions, summary.TotalFlagged, summary.AlertsInserted)
	return summary, nil
}
