package service

import (
	"context"
	"encoding/json"
	"time"

	"fraudpipeline/internal/infrastructure/mq"
)

// KafkaTrigger 通过 Kafka 发布流水线触发事件
// 消费方是外部的调度器（工作流引擎 / 周期任务），不在本服务内
type KafkaTrigger struct {
	producer *mq.Producer
	topic    string
}

func NewKafkaTrigger(producer *mq.Producer, topic string) *KafkaTrigger {
	return &KafkaTrigger{producer: producer, topic: topic}
}

type triggerEvent struct {
	EventType string `json:"event_type"`
	Reason    string `json:"reason"`
	FiredAt   string `json:"fired_at"`
}

func (t *KafkaTrigger) Fire(ctx context.Context, reason string) error {
	payload, _ := json.Marshal(triggerEvent{
		EventType: "fraud-run",
		Reason:    reason,
		FiredAt:   time.Now().Format(time.RFC3339),
	})
	return t.producer.SendMessage(t.topic, "fraud-run", string(payload))
}
