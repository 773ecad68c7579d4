package queue

import (
	"context"
)

// ============================================================================
// 交易队列抽象
// ============================================================================
//
// 生产端（ingestion API）RPUSH 到队尾，消费端（批处理）LPOP 从队头弹出，
// 形成 FIFO。弹出是破坏性的：一条交易被弹出后如果运行在落库前崩溃，
// 这条数据就丢了 —— 这是接受的 at-most-once 语义。
//
// 队列能力通过接口注入。未配置 Redis 时批处理使用 Disabled 实现，
// 而不是在核心逻辑里做条件加载。

// Consumer 队列消费端
type Consumer interface {
	// Pop 从队头弹出一条序列化的交易负载
	// 队列为空时返回 ok=false，不阻塞等待
	Pop(ctx context.Context) (payload []byte, ok bool, err error)
}

// Producer 队列生产端
type Producer interface {
	// Push 把一批序列化负载追加到队尾，整批一次往返
	Push(ctx context.Context, payloads ...[]byte) error
}

// Disabled 未配置队列时的空实现：永远为空，入队直接报错
type Disabled struct{}

func (Disabled) Pop(ctx context.Context) ([]byte, bool, error) {
	return nil, false, nil
}

func (Disabled) Push(ctx context.Context, payloads ...[]byte) error {
	return ErrQueueDisabled
}
