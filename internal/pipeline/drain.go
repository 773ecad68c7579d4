package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"fraudpipeline/internal/model"
	"fraudpipeline/internal/queue"
)

// Drainer 队列排空器
// 从队头逐条弹出，直到队列为空或达到单次运行上限
type Drainer struct {
	consumer queue.Consumer
	max      int
}

func NewDrainer(consumer queue.Consumer, max int) *Drainer {
	return &Drainer{consumer: consumer, max: max}
}

// Drain 排空队列并反序列化
//
// 【关键点】弹出是破坏性的：解析失败时条目已经离开队列。
// 这里采取 fail-fast 策略 —— 一条坏数据直接让整次运行失败，
// 而不是悄悄丢掉风控相关的数据。上限内队列提前变空属于正常情况
func (d *Drainer) Drain(ctx context.Context) ([]model.Transaction, error) {
	drained := make([]model.Transaction, 0, 64)

	for i := 0; i < d.max; i++ {
		payload, ok, err := d.consumer.Pop(ctx)
		if err != nil {
			return nil, fmt.Errorf("消费队列失败: %w", err)
		}
		if !ok {
			break
		}

		var txn model.Transaction
		if err := json.Unmarshal(payload, &txn); err != nil {
			return nil, fmt.Errorf("队列条目反序列化失败: %w", err)
		}
		txn.ApplyDefaults()
		drained = append(drained, txn)
	}

	log.Printf("[Pipeline] 从队列消费 %d 笔交易", len(drained))
	return drained, nil
}
