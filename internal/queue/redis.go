package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

var ErrQueueDisabled = errors.New("未配置交易队列")

// RedisQueue 基于 Redis list 的 FIFO 队列
// RPUSH 入队、LPOP 出队，和外部（仪表盘之外的）生产者共用同一个 key。
// LPOP 单条原子弹出，多个批处理实例并发消费时各自拿到互不重叠的条目
type RedisQueue struct {
	client *redis.Client
	name   string
}

func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{client: client, name: name}
}

func (q *RedisQueue) Pop(ctx context.Context) ([]byte, bool, error) {
	payload, err := q.client.LPop(ctx, q.name).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("弹出队列条目失败: %w", err)
	}
	return payload, true, nil
}

func (q *RedisQueue) Push(ctx context.Context, payloads ...[]byte) error {
	if len(payloads) == 0 {
		return nil
	}
	pipe := q.client.Pipeline()
	for _, p := range payloads {
		pipe.RPush(ctx, q.name, p)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入队列失败: %w", err)
	}
	return nil
}

// Len 当前队列长度，仅用于健康检查和测试
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}
