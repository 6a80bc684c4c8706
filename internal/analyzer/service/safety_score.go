package service

import (
	"fmt"
	"time"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ScoreInput 评分器的完整输入，全部来自上游组件的既有结果
type ScoreInput struct {
	Meta          *model.TokenMetadata
	Pools         []model.LiquidityPool
	LPSecurity    model.LPSecurityStatus
	Holders       model.HolderAnalysis
	Honeypot      model.HoneypotFinding
	Deviation     model.PriceDeviationResult
	ActivityCount int
	ActivityKnown bool
	Now           time.Time
}

// SafetyScorer 八个评分桶的确定性加权求和
type SafetyScorer struct {
	cfg config.Config
	tl  *zap.Logger
}

func NewSafetyScorer(cfg config.Config, logger *zap.Logger) *SafetyScorer {
	return &SafetyScorer{cfg: cfg, tl: logger}
}

// Score 产出分项、总分、等级、合并后的风险因素与建议
func (s *SafetyScorer) Score(in ScoreInput) (model.SafetyScoreBreakdown, int, string, []string, []string) {
	breakdown := model.SafetyScoreBreakdown{
		Holders:        holderBucket(in.Holders.Top10ExclLPPct),
		Liquidity:      liquidityBucket(totalLiquidityUSD(in.Pools), in.LPSecurity),
		Verification:   boolBucket(in.Meta.Verified, 10),
		Ownership:      boolBucket(in.Meta.Renounced || in.Meta.OwnerAddress == nil, 10),
		Trading:        tradingBucket(in.ActivityCount, in.ActivityKnown),
		Age:            ageBucket(in.Meta.CreatedAt, in.Now),
		Honeypot:       boolBucket(!in.Honeypot.IsHoneypot, 15),
		DiamondHands:   diamondBucket(in.Holders.DiamondHandCount),
		PriceDeviation: in.Deviation.ScorePenalty,
	}

	total := breakdown.Holders + breakdown.Liquidity + breakdown.Verification +
		breakdown.Ownership + breakdown.Trading + breakdown.Age +
		breakdown.Honeypot + breakdown.DiamondHands + breakdown.PriceDeviation

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	// 完全没有流动性的代币无论其他桶多高都不能高于 CRITICAL
	if len(in.Pools) == 0 && total >= 20 {
		total = 19
	}

	tier := riskTier(total)
	factors := s.mergeRiskFactors(in)
	return breakdown, total, tier, factors, s.recommendations(tier, in)
}

func holderBucket(exclLPPct decimal.Decimal) int {
	switch {
	case exclLPPct.LessThanOrEqual(decimal.NewFromInt(20)):
		return 15
	case exclLPPct.LessThanOrEqual(decimal.NewFromInt(40)):
		return 12
	case exclLPPct.LessThanOrEqual(decimal.NewFromInt(60)):
		return 8
	case exclLPPct.LessThanOrEqual(decimal.NewFromInt(80)):
		return 4
	default:
		return 0
	}
}

func totalLiquidityUSD(pools []model.LiquidityPool) decimal.Decimal {
	total := decimal.Zero
	for _, p := range pools {
		total = total.Add(p.LiquidityUSD)
	}
	return total
}

func liquidityBucket(liqUSD decimal.Decimal, security model.LPSecurityStatus) int {
	var base int
	switch {
	case liqUSD.GreaterThanOrEqual(decimal.NewFromInt(100_000)):
		base = 15
	case liqUSD.GreaterThanOrEqual(decimal.NewFromInt(50_000)):
		base = 12
	case liqUSD.GreaterThanOrEqual(decimal.NewFromInt(10_000)):
		base = 8
	case liqUSD.GreaterThanOrEqual(decimal.NewFromInt(1_000)):
		base = 4
	default:
		base = 0
	}

	switch security.State {
	case model.LPStateBurned:
		base += 10
	case model.LPStateLocked:
		base += 8
	}
	return base
}

func boolBucket(ok bool, points int) int {
	if ok {
		return points
	}
	return 0
}

// tradingBucket 有近期成交给满分；确定没有成交给 0；
// 取数失败（unknown）给中间值，避免把数据问题当成死盘
func tradingBucket(count int, known bool) int {
	if !known {
		return 5
	}
	if count > 0 {
		return 10
	}
	return 0
}

func ageBucket(createdAt *int64, now time.Time) int {
	if createdAt == nil {
		return 5 // 年龄未知给中间值
	}
	days := (now.Unix() - *createdAt) / 86400
	switch {
	case days >= 30:
		return 10
	case days >= 7:
		return 7
	case days >= 1:
		return 3
	default:
		return 0
	}
}

func diamondBucket(count int) int {
	switch {
	case count >= 5:
		return 5
	case count >= 3:
		return 3
	case count >= 1:
		return 1
	default:
		return 0
	}
}

func riskTier(score int) string {
	switch {
	case score < 20:
		return model.TierCritical
	case score < 40:
		return model.TierHigh
	case score < 60:
		return model.TierMedium
	case score < 80:
		return model.TierLow
	default:
		return model.TierSafe
	}
}

// mergeRiskFactors 按组件顺序合并：流动性 → 持仓 → 蜜罐 → 价格偏离
func (s *SafetyScorer) mergeRiskFactors(in ScoreInput) []string {
	var factors []string

	if len(in.Pools) == 0 {
		factors = append(factors, "No liquidity pool found")
	} else if in.LPSecurity.State == model.LPStateUnsecured {
		factors = append(factors, "Liquidity is neither burned nor locked")
	}

	factors = append(factors, in.Holders.RiskFactors...)

	if in.Honeypot.IsHoneypot {
		factors = append(factors, "Honeypot heuristics triggered")
		factors = append(factors, in.Honeypot.Indicators...)
	}

	if in.Deviation.Sufficient && in.Deviation.ScorePenalty < 0 {
		factors = append(factors, fmt.Sprintf("Pool price deviates %s%% from oracle price (%s)",
			in.Deviation.DeviationPct.StringFixed(2), in.Deviation.Tier))
	}

	return factors
}

func (s *SafetyScorer) recommendations(tier string, in ScoreInput) []string {
	var recs []string

	if in.Honeypot.IsHoneypot {
		recs = append(recs, "Do not buy: heuristics indicate the sell path may be blocked")
	}
	if len(in.Pools) == 0 {
		recs = append(recs, "No tradable liquidity exists for this token")
	} else if in.LPSecurity.State == model.LPStateUnsecured {
		recs = append(recs, "Liquidity can be withdrawn by its owner at any time")
	}

	switch tier {
	case model.TierCritical, model.TierHigh:
		recs = append(recs, "Avoid trading this token")
	case model.TierMedium:
		recs = append(recs, "Trade with caution and limited size")
	default:
		recs = append(recs, "No critical findings; standard caution applies")
	}

	return recs
}
