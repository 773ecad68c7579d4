package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions_sample.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写样本文件失败: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "transaction_id,amount,location,device\nT-1,15000,CAN,Mobile\nT-2,42.5,,\n")

	src := NewSecondarySource(&config.PipelineConfig{CSVPath: path})
	txns, err := src.Load()
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("期望 2 条, 实际 %d", len(txns))
	}
	if txns[0].TransactionID != "T-1" || txns[0].Amount != 15000 || txns[0].Location != "CAN" || txns[0].Device != "Mobile" {
		t.Errorf("第一条解析错误: %+v", txns[0])
	}
	// 空的 location/device 补缺省值
	if txns[1].Location != "USA" || txns[1].Device != "Web" {
		t.Errorf("缺省值未补齐: %+v", txns[1])
	}
}

func TestLoadCSVMissingRequiredColumn(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"缺 amount", "transaction_id,location\nT-1,USA\n"},
		{"缺 transaction_id", "amount,location\n100,USA\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempCSV(t, tt.header)
			src := NewSecondarySource(&config.PipelineConfig{CSVPath: path})
			if _, err := src.Load(); err == nil {
				t.Fatal("缺少必需列期望整次运行失败")
			}
		})
	}
}

func TestLoadCSVMalformedAmount(t *testing.T) {
	path := writeTempCSV(t, "transaction_id,amount\nT-1,abc\n")
	src := NewSecondarySource(&config.PipelineConfig{CSVPath: path})
	if _, err := src.Load(); err == nil {
		t.Fatal("非法金额期望返回错误")
	}
}

func TestLoadNoFileSyntheticDisabled(t *testing.T) {
	src := NewSecondarySource(&config.PipelineConfig{
		CSVPath:   filepath.Join(t.TempDir(), "missing.csv"),
		Synthetic: config.SyntheticConfig{Enabled: false},
	})
	txns, err := src.Load()
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	// 合成数据未开启时绝不悄悄生成
	if len(txns) != 0 {
		t.Fatalf("期望空集, 实际 %d 条", len(txns))
	}
}

func TestLoadNoFileSyntheticEnabled(t *testing.T) {
	src := NewSecondarySource(&config.PipelineConfig{
		CSVPath:   filepath.Join(t.TempDir(), "missing.csv"),
		Synthetic: config.SyntheticConfig{Enabled: true, Count: 50},
	})
	txns, err := src.Load()
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if len(txns) != 50 {
		t.Fatalf("期望 50 条, 实际 %d", len(txns))
	}
}

func TestGenerateSyntheticShape(t *testing.T) {
	txns := GenerateSynthetic(50, 1700000000)

	if len(txns) != 50 {
		t.Fatalf("期望 50 条, 实际 %d", len(txns))
	}

	for i, txn := range txns {
		n := i + 1
		if n%7 == 0 {
			// 每第 7 笔是 25000 的大额尖峰
			if txn.Amount != 25000 {
				t.Errorf("第 %d 笔期望尖峰 25000, 实际 %v", n, txn.Amount)
			}
		} else if txn.Amount != float64(25*n) {
			t.Errorf("第 %d 笔期望 %d, 实际 %v", n, 25*n, txn.Amount)
		}

		wantLoc := "USA"
		if n%3 == 0 {
			wantLoc = "CAN"
		}
		wantDev := "Web"
		if n%2 == 0 {
			wantDev = "Mobile"
		}
		if txn.Location != wantLoc || txn.Device != wantDev {
			t.Errorf("第 %d 笔 location/device = %s/%s, 期望 %s/%s", n, txn.Location, txn.Device, wantLoc, wantDev)
		}
	}

	// 相同种子生成相同的 ID 序列
	again := GenerateSynthetic(50, 1700000000)
	if txns[0].TransactionID != again[0].TransactionID {
		t.Errorf("相同种子期望确定性输出")
	}
	if txns[0].TransactionID != "TXN1700000001" {
		t.Errorf("ID 格式错误: %s", txns[0].TransactionID)
	}
}

func TestMergeOrder(t *testing.T) {
	drained := []model.Transaction{
		{TransactionID: "A", Amount: 1},
		{TransactionID: "B", Amount: 2},
	}
	secondary := []model.Transaction{
		{TransactionID: "C", Amount: 3},
		{TransactionID: "D", Amount: 4},
	}

	working := Merge(drained, secondary)
	want := []string{"A", "B", "C", "D"}
	if len(working) != len(want) {
		t.Fatalf("工作集大小 = %d, 期望 %d", len(working), len(want))
	}
	for i, id := range want {
		if working[i].TransactionID != id {
			t.Errorf("工作集[%d] = %s, 期望 %s", i, working[i].TransactionID, id)
		}
	}
}

func TestMergeKeepsDuplicates(t *testing.T) {
	// 同一 transaction_id 在两个来源都出现时不去重，两行都进工作集
	working := Merge(
		[]model.Transaction{{TransactionID: "X", Amount: 1}},
		[]model.Transaction{{TransactionID: "X", Amount: 2}},
	)
	if len(working) != 2 {
		t.Fatalf("期望保留重复行, 实际 %d 条", len(working))
	}
	if working[0].Amount != 1 || working[1].Amount != 2 {
		t.Errorf("重复行顺序错误: %+v", working)
	}
}
