package queue

import (
	"context"
	"testing"
)

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	if err := q.Push(ctx, []byte("a"), []byte("b"), []byte("c")); err != nil {
		t.Fatalf("Push 失败: %v", err)
	}
	if q.Len() != 3 {
		t.Fatalf("长度 = %d, 期望 3", q.Len())
	}

	for _, want := range []string{"a", "b", "c"} {
		payload, ok, err := q.Pop(ctx)
		if err != nil || !ok {
			t.Fatalf("Pop 失败: ok=%v err=%v", ok, err)
		}
		if string(payload) != want {
			t.Errorf("Pop = %q, 期望 %q", payload, want)
		}
	}

	// 弹空之后返回 ok=false，不阻塞
	if _, ok, err := q.Pop(ctx); ok || err != nil {
		t.Fatalf("空队列期望 ok=false: ok=%v err=%v", ok, err)
	}
}

func TestDisabledQueue(t *testing.T) {
	ctx := context.Background()

	if _, ok, err := (Disabled{}).Pop(ctx); ok || err != nil {
		t.Fatalf("空实现 Pop 期望永远为空: ok=%v err=%v", ok, err)
	}
	if err := (Disabled{}).Push(ctx, []byte("x")); err == nil {
		t.Fatal("空实现 Push 期望报错")
	}
}
