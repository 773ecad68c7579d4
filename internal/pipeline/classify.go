package pipeline

import (
	"fraudpipeline/internal/model"
)

// Classify 静态阈值风控规则
//
// 纯函数：金额 >= 10000（含）的交易产出一条告警候选，风险分 90，
// 原因 high_amount；其余交易不产出。保持输入顺序，不做货币归一化。
// 规则刻意只有这一条，规则集可插拔留给后续演进
func Classify(working []model.Transaction) []model.AlertCandidate {
	var candidates []model.AlertCandidate
	for _, txn := range working {
		if txn.Amount >= model.FraudAmountThreshold {
			candidates = append(candidates, model.AlertCandidate{
				TransactionID: txn.TransactionID,
				Amount:        txn.Amount,
				RiskScore:     model.FraudRiskScore,
				FlaggedReason: model.FraudReasonHighAmount,
			})
		}
	}
	return candidates
}
