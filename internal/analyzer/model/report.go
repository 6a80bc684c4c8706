package model

import "github.com/shopspring/decimal"

// HoneypotFinding 蜜罐启发式判定。只做规则匹配，不做买卖模拟，
// 未命中不代表可以卖出
type HoneypotFinding struct {
	IsHoneypot bool            `json:"is_honeypot"`
	Indicators []string        `json:"indicators"`
	SellTaxPct decimal.Decimal `json:"sell_tax_pct"`
	BuyTaxPct  decimal.Decimal `json:"buy_tax_pct"`
	Reason     *string         `json:"reason,omitempty"`
}

// 价格偏离等级
const (
	DeviationLow      = "low"
	DeviationMedium   = "medium"
	DeviationHigh     = "high"
	DeviationCritical = "critical"
	DeviationUnknown  = "unknown"
)

// PriceDeviationResult 预言机价与池内现价的偏离
type PriceDeviationResult struct {
	OraclePriceUSD decimal.Decimal `json:"oracle_price_usd"`
	PoolPriceUSD   decimal.Decimal `json:"pool_price_usd"`
	DeviationPct   decimal.Decimal `json:"deviation_pct"`
	Tier           string          `json:"tier"`
	ScorePenalty   int             `json:"score_penalty"`
	Sufficient     bool            `json:"sufficient"`
}

// SafetyScoreBreakdown 各评分桶得分
// holders<=15 liquidity<=25 verification<=10 ownership<=10 trading<=10
// age<=10 honeypot<=15 diamond_hands<=5 price_deviation<=0
type SafetyScoreBreakdown struct {
	Holders        int `json:"holders"`
	Liquidity      int `json:"liquidity"`
	Verification   int `json:"verification"`
	Ownership      int `json:"ownership"`
	Trading        int `json:"trading"`
	Age            int `json:"age"`
	Honeypot       int `json:"honeypot"`
	DiamondHands   int `json:"diamond_hands"`
	PriceDeviation int `json:"price_deviation"`
}

// 风险等级
const (
	TierCritical = "CRITICAL"
	TierHigh     = "HIGH"
	TierMedium   = "MEDIUM"
	TierLow      = "LOW"
	TierSafe     = "SAFE"
)

// RiskReport 单代币风险报告，可直接序列化，不依赖任何 UI/传输层
type RiskReport struct {
	Metadata        TokenMetadata        `json:"metadata"`
	Pools           []LiquidityPool      `json:"pools"`
	MainPool        *LiquidityPool       `json:"main_pool,omitempty"`
	LPSecurity      LPSecurityStatus     `json:"lp_security"`
	HolderAnalysis  HolderAnalysis       `json:"holder_analysis"`
	Honeypot        HoneypotFinding      `json:"honeypot"`
	PriceDeviation  PriceDeviationResult `json:"price_deviation"`
	Breakdown       SafetyScoreBreakdown `json:"breakdown"`
	TotalScore      int                  `json:"total_score"`
	RiskTier        string               `json:"risk_tier"`
	RiskFactors     []string             `json:"risk_factors"`
	Recommendations []string             `json:"recommendations"`
	GeneratedAt     int64                `json:"generated_at"`
}
