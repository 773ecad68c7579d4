package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fraudpipeline/internal/model"
	"fraudpipeline/internal/queue"
)

// ============================================================================
// 交易接入服务
// ============================================================================
//
// 接入路径只做三件事：校验 -> 入队 -> 异步触发批处理。
//
// 【关键点】触发是 fire-and-forget：
// 1. 顺序保证：先等入队确认成功，再发触发事件
// 2. 失败边界隔离：触发失败只记日志，绝不影响入队方的响应

// Trigger 批处理触发能力
type Trigger interface {
	Fire(ctx context.Context, reason string) error
}

// NoopTrigger 未配置 Kafka 时的空实现
type NoopTrigger struct{}

func (NoopTrigger) Fire(ctx context.Context, reason string) error {
	return nil
}

// IngestService 交易接入服务
type IngestService struct {
	producer queue.Producer
	trigger  Trigger
}

func NewIngestService(producer queue.Producer, trigger Trigger) *IngestService {
	if trigger == nil {
		trigger = NoopTrigger{}
	}
	return &IngestService{
		producer: producer,
		trigger:  trigger,
	}
}

// Enqueue 单笔交易入队
func (s *IngestService) Enqueue(ctx context.Context, txn model.Transaction) error {
	return s.EnqueueBatch(ctx, []model.Transaction{txn})
}

// EnqueueBatch 批量入队，一次 Redis 往返
// 入队确认成功后才异步发触发事件
func (s *IngestService) EnqueueBatch(ctx context.Context, txns []model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	payloads := make([][]byte, 0, len(txns))
	for i := range txns {
		txns[i].ApplyDefaults()
		payload, err := json.Marshal(txns[i])
		if err != nil {
			return fmt.Errorf("序列化交易失败: %w", err)
		}
		payloads = append(payloads, payload)
	}

	if err := s.producer.Push(ctx, payloads...); err != nil {
		return fmt.Errorf("交易入队失败: %w", err)
	}

	s.fireTrigger()
	return nil
}

// fireTrigger 异步发批处理触发事件，失败只记日志
func (s *IngestService) fireTrigger() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.trigger.Fire(ctx, "transactions-enqueued"); err != nil {
			log.Printf("[Ingest] 触发批处理失败（不影响入队结果）: %v", err)
		}
	}()
}
