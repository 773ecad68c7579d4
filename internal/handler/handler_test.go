package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fraudpipeline/internal/queue"
	"fraudpipeline/internal/service"
	"fraudpipeline/pkg/response"

	"github.com/gin-gonic/gin"
)

func newTestRouter(q *queue.MemoryQueue, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		ingestService: service.NewIngestService(q, service.NoopTrigger{}),
	}
	r := gin.New()
	r.POST("/api/v1/transactions", AuthMiddleware(token), h.EnqueueTransaction)
	r.POST("/api/v1/transactions/batch", AuthMiddleware(token), h.EnqueueBatch)
	return r
}

func doPost(r *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-API-TOKEN", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEnqueueTransactionSuccess(t *testing.T) {
	q := queue.NewMemoryQueue()
	r := newTestRouter(q, "")

	w := doPost(r, "/api/v1/transactions",
		`{"transaction_id":"TXN001","amount":15000,"location":"USA","device":"Web"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态 = %d", w.Code)
	}
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是合法 JSON: %v", err)
	}
	if resp.Code != response.CodeSuccess {
		t.Fatalf("业务码 = %d, 期望成功", resp.Code)
	}
	if q.Len() != 1 {
		t.Fatalf("队列长度 = %d, 期望 1", q.Len())
	}
}

func TestEnqueueTransactionValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"非法 JSON", `{{{`},
		{"缺 transaction_id", `{"amount":100}`},
		{"transaction_id 太短", `{"transaction_id":"ab","amount":100}`},
		{"金额为零", `{"transaction_id":"TXN001","amount":0}`},
		{"金额为负", `{"transaction_id":"TXN001","amount":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queue.NewMemoryQueue()
			r := newTestRouter(q, "")

			w := doPost(r, "/api/v1/transactions", tt.body, "")
			var resp response.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("响应不是合法 JSON: %v", err)
			}
			if resp.Code != response.CodeParamError {
				t.Errorf("业务码 = %d, 期望参数错误", resp.Code)
			}
			if q.Len() != 0 {
				t.Error("校验失败的交易不应入队")
			}
		})
	}
}

func TestEnqueueBatch(t *testing.T) {
	q := queue.NewMemoryQueue()
	r := newTestRouter(q, "")

	w := doPost(r, "/api/v1/transactions/batch",
		`[{"transaction_id":"TXN001","amount":10},{"transaction_id":"TXN002","amount":20000}]`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("HTTP 状态 = %d", w.Code)
	}
	if q.Len() != 2 {
		t.Fatalf("队列长度 = %d, 期望 2", q.Len())
	}
}

func TestAuthMiddleware(t *testing.T) {
	q := queue.NewMemoryQueue()
	r := newTestRouter(q, "secret")
	body := `{"transaction_id":"TXN001","amount":100}`

	// 令牌缺失或错误都拒绝
	for _, token := range []string{"", "wrong"} {
		w := doPost(r, "/api/v1/transactions", body, token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("token=%q: HTTP 状态 = %d, 期望 401", token, w.Code)
		}
	}
	if q.Len() != 0 {
		t.Fatal("未授权请求不应入队")
	}

	// 正确令牌放行
	w := doPost(r, "/api/v1/transactions", body, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("正确令牌被拒绝: %d", w.Code)
	}
	if q.Len() != 1 {
		t.Fatalf("队列长度 = %d, 期望 1", q.Len())
	}
}
