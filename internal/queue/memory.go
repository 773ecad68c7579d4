package queue

import (
	"context"
	"sync"
)

// MemoryQueue 进程内 FIFO 队列
// 单实例部署和测试用，多实例部署请配置 Redis
type MemoryQueue struct {
	mu    sync.Mutex
	items [][]byte
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Pop(ctx context.Context) ([]byte, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false, nil
	}
	payload := q.items[0]
	q.items = q.items[1:]
	return payload, true, nil
}

func (q *MemoryQueue) Push(ctx context.Context, payloads ...[]byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, payloads...)
	return nil
}

// Len 当前队列长度
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

var (
	_ Consumer = (*MemoryQueue)(nil)
	_ Producer = (*MemoryQueue)(nil)
	_ Consumer = (*RedisQueue)(nil)
	_ Producer = (*RedisQueue)(nil)
	_ Consumer = Disabled{}
	_ Producer = Disabled{}
)
