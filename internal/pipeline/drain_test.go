package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"fraudpipeline/internal/model"
	"fraudpipeline/internal/queue"
)

func enqueueJSON(t *testing.T, q *queue.MemoryQueue, txns ...model.Transaction) {
	t.Helper()
	for _, txn := range txns {
		payload, err := json.Marshal(txn)
		if err != nil {
			t.Fatalf("序列化失败: %v", err)
		}
		if err := q.Push(context.Background(), payload); err != nil {
			t.Fatalf("入队失败: %v", err)
		}
	}
}

func TestDrainEmptyQueue(t *testing.T) {
	q := queue.NewMemoryQueue()
	drained, err := NewDrainer(q, 5000).Drain(context.Background())
	if err != nil {
		t.Fatalf("空队列不应报错: %v", err)
	}
	if len(drained) != 0 {
		t.Fatalf("空队列期望空结果, 实际 %d 条", len(drained))
	}
}

func TestDrainPreservesOrder(t *testing.T) {
	q := queue.NewMemoryQueue()
	enqueueJSON(t, q,
		model.Transaction{TransactionID: "T-1", Amount: 100},
		model.Transaction{TransactionID: "T-2", Amount: 200},
		model.Transaction{TransactionID: "T-3", Amount: 300},
	)

	drained, err := NewDrainer(q, 5000).Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain 失败: %v", err)
	}
	for i, want := range []string{"T-1", "T-2", "T-3"} {
		if drained[i].TransactionID != want {
			t.Errorf("第 %d 条 = %s, 期望 %s", i, drained[i].TransactionID, want)
		}
	}
}

func TestDrainCap(t *testing.T) {
	q := queue.NewMemoryQueue()
	for i := 0; i < 6000; i++ {
		enqueueJSON(t, q, model.Transaction{TransactionID: fmt.Sprintf("T-%04d", i), Amount: 1})
	}

	drained, err := NewDrainer(q, 5000).Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain 失败: %v", err)
	}
	if len(drained) != 5000 {
		t.Fatalf("期望消费 5000 条, 实际 %d", len(drained))
	}
	if q.Len() != 1000 {
		t.Fatalf("期望队列剩余 1000 条, 实际 %d", q.Len())
	}
	// 剩下的应该是最后 1000 条
	if drained[0].TransactionID != "T-0000" || drained[4999].TransactionID != "T-4999" {
		t.Errorf("消费顺序错误: 首=%s 尾=%s", drained[0].TransactionID, drained[4999].TransactionID)
	}
}

func TestDrainMalformedPayloadFailsRun(t *testing.T) {
	q := queue.NewMemoryQueue()
	enqueueJSON(t, q, model.Transaction{TransactionID: "T-1", Amount: 100})
	if err := q.Push(context.Background(), []byte("not-json{{{")); err != nil {
		t.Fatalf("入队失败: %v", err)
	}

	// fail-fast 策略：一条坏数据让整次排空失败，而不是悄悄跳过
	if _, err := NewDrainer(q, 5000).Drain(context.Background()); err == nil {
		t.Fatal("坏数据期望返回错误")
	}
}

func TestDrainAppliesDefaults(t *testing.T) {
	q := queue.NewMemoryQueue()
	if err := q.Push(context.Background(), []byte(`{"transaction_id":"T-1","amount":50}`)); err != nil {
		t.Fatalf("入队失败: %v", err)
	}

	drained, err := NewDrainer(q, 10).Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain 失败: %v", err)
	}
	if drained[0].Location != "USA" || drained[0].Device != "Web" {
		t.Errorf("缺省值未补齐: location=%q device=%q", drained[0].Location, drained[0].Device)
	}
}
