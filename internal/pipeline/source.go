package pipeline

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/model"
)

// SecondarySource 次级数据源
// 优先加载 CSV 文件；文件不存在时，只有显式开启合成数据才生成演示数据，
// 两者都没有则返回空集
type SecondarySource struct {
	csvPath   string
	synthetic config.SyntheticConfig
}

func NewSecondarySource(cfg *config.PipelineConfig) *SecondarySource {
	return &SecondarySource{
		csvPath:   cfg.CSVPath,
		synthetic: cfg.Synthetic,
	}
}

// Load 加载次级数据源
func (s *SecondarySource) Load() ([]model.Transaction, error) {
	if s.csvPath != "" {
		if _, err := os.Stat(s.csvPath); err == nil {
			log.Printf("[Pipeline] 从 %s 加载交易样本", s.csvPath)
			return loadCSV(s.csvPath)
		}
	}

	if s.synthetic.Enabled {
		log.Printf("[Pipeline] 未找到样本文件，生成 %d 笔合成交易", s.synthetic.Count)
		return GenerateSynthetic(s.synthetic.Count, time.Now().Unix()), nil
	}

	return nil, nil
}

// loadCSV 解析交易样本文件
// transaction_id 和 amount 是必需列，缺少任何一列都让整次运行失败；
// location / device 缺失时补模型缺省值
func loadCSV(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开样本文件失败: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析样本文件失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("样本文件 %s 没有表头", path)
	}

	// 表头列名 -> 下标
	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, required := range []string{"transaction_id", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("样本文件缺少必需列: %s", required)
		}
	}

	txns := make([]model.Transaction, 0, len(records)-1)
	for lineNo, rec := range records[1:] {
		amount, err := strconv.ParseFloat(rec[cols["amount"]], 64)
		if err != nil {
			return nil, fmt.Errorf("样本文件第 %d 行金额非法: %w", lineNo+2, err)
		}

		txn := model.Transaction{
			TransactionID: rec[cols["transaction_id"]],
			Amount:        amount,
		}
		if i, ok := cols["location"]; ok && i < len(rec) {
			txn.Location = rec[i]
		}
		if i, ok := cols["device"]; ok && i < len(rec) {
			txn.Device = rec[i]
		}
		txn.ApplyDefaults()
		txns = append(txns, txn)
	}

	return txns, nil
}

// GenerateSynthetic 生成合成演示交易
// base 通常取当前 unix 秒，保证多次运行生成不同的 transaction_id。
// 每第 7 笔放一个 25000 的大额尖峰，其余按 25*i 递增；
// 地域每 3 笔、设备每 2 笔交替一次。仅供演示和测试
func GenerateSynthetic(count int, base int64) []model.Transaction {
	txns := make([]model.Transaction, 0, count)
	for i := 1; i <= count; i++ {
		amount := float64(25 * i)
		if i%7 == 0 {
			amount = 25000
		}
		location := "USA"
		if i%3 == 0 {
			location = "CAN"
		}
		device := "Web"
		if i%2 == 0 {
			device = "Mobile"
		}
		txns = append(txns, model.Transaction{
			TransactionID: fmt.Sprintf("TXN%d", base+int64(i)),
			Amount:        amount,
			Location:      location,
			Device:        device,
		})
	}
	return txns
}

// Merge 合并工作集：队列条目在前，次级数据源在后，保持相对顺序
//
// 不做任何去重 —— 同一个 transaction_id 在两个来源都出现时两行都会
// 进入工作集独立处理，台账 upsert 时后处理的一行胜出
func Merge(drained, secondary []model.Transaction) []model.Transaction {
	working := make([]model.Transaction, 0, len(drained)+len(secondary))
	working = append(working, drained...)
	working = append(working, secondary...)
	return working
}
