package model

import "github.com/shopspring/decimal"

// 持有人角色
const (
	RoleCreator   = "creator"
	RoleOwner     = "owner"
	RoleLiquidity = "liquidity"
	RoleRegular   = "regular"
)

// HolderBalance 行情网关返回的原始持仓记录
type HolderBalance struct {
	Address    string          `json:"address"`
	BalanceRaw decimal.Decimal `json:"balance_raw"`
	IsContract bool            `json:"is_contract"`
}

// Holder 分类并补充标签后的持有人
type Holder struct {
	Address            string          `json:"address"`
	BalanceRaw         decimal.Decimal `json:"balance_raw"`
	Balance            decimal.Decimal `json:"balance"`
	PercentageOfSupply decimal.Decimal `json:"percentage_of_supply"` // 0-100，两位小数
	Role               string          `json:"role"`
	IsWhale            bool            `json:"is_whale"`
	IsHugeValueTrader  bool            `json:"is_huge_value_trader"`
	IsDiamondHands     bool            `json:"is_diamond_hands"`
	WhaleValueUSD      decimal.Decimal `json:"whale_value_usd"`
	LargestTransferUSD decimal.Decimal `json:"largest_transfer_usd"`
	HoldingDays        int             `json:"holding_days"`
}

// HolderAnalysis 持仓分布分析结果
type HolderAnalysis struct {
	TotalHolders     int             `json:"total_holders"`
	Top10            []Holder        `json:"top10"`
	Top10Pct         decimal.Decimal `json:"top10_pct"`
	Top10ExclLPPct   decimal.Decimal `json:"top10_excl_lp_pct"`
	DiamondHandCount int             `json:"diamond_hand_count"`
	RiskFactors      []string        `json:"risk_factors"`
}
