package service

import (
	"web3-risk/internal/analyzer/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceDeviationChecker 预言机价与池内现价的偏离检查
type PriceDeviationChecker struct {
	tl *zap.Logger
}

func NewPriceDeviationChecker(logger *zap.Logger) *PriceDeviationChecker {
	return &PriceDeviationChecker{tl: logger}
}

// Check 任一价格缺失时报告数据不足，不能按零偏离处理。
// 档位上界取闭区间：偏离恰为 3/6/10 时落入 medium/high/critical
func (c *PriceDeviationChecker) Check(oraclePrice, poolPrice decimal.Decimal) model.PriceDeviationResult {
	if !oraclePrice.IsPositive() || !poolPrice.IsPositive() {
		return model.PriceDeviationResult{
			Tier:       model.DeviationUnknown,
			Sufficient: false,
		}
	}

	deviation := poolPrice.Sub(oraclePrice).Abs().Div(oraclePrice).Mul(decimal.NewFromInt(100))

	result := model.PriceDeviationResult{
		OraclePriceUSD: oraclePrice,
		PoolPriceUSD:   poolPrice,
		DeviationPct:   deviation,
		Sufficient:     true,
	}

	switch {
	case deviation.LessThan(decimal.NewFromInt(3)):
		result.Tier = model.DeviationLow
		result.ScorePenalty = 0
	case deviation.LessThan(decimal.NewFromInt(6)):
		result.Tier = model.DeviationMedium
		result.ScorePenalty = -5
	case deviation.LessThan(decimal.NewFromInt(10)):
		result.Tier = model.DeviationHigh
		result.ScorePenalty = -15
	case deviation.LessThan(decimal.NewFromInt(20)):
		result.Tier = model.DeviationCritical
		result.ScorePenalty = -30
	default:
		result.Tier = model.DeviationCritical
		result.ScorePenalty = -50
	}

	return result
}
