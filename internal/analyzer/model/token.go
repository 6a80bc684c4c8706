package model

import "github.com/shopspring/decimal"

// TokenMetadata 代币元数据快照，每次分析只取一次，取到后不再修改
type TokenMetadata struct {
	Address        string           `json:"address"`
	Name           string           `json:"name"`
	Symbol         string           `json:"symbol"`
	Decimals       uint8            `json:"decimals"`
	TotalSupply    decimal.Decimal  `json:"total_supply"`
	OwnerAddress   *string          `json:"owner_address,omitempty"`
	CreatorAddress *string          `json:"creator_address,omitempty"`
	Verified       bool             `json:"verified"`
	Renounced      bool             `json:"renounced"`
	CreatedAt      *int64           `json:"created_at,omitempty"`
	PriceUsd       *decimal.Decimal `json:"price_usd,omitempty"`
}

// TokenInfo 行情网关补充的代币信息（链上读不到的部分）
type TokenInfo struct {
	Verified     bool   `json:"verified"`
	Creator      string `json:"creator"`
	CreatedAt    *int64 `json:"created_at"`
	TotalHolders int    `json:"total_holders"`
}

// LiquidityPool 交易池，按地址去重
type LiquidityPool struct {
	Address       string          `json:"address"`
	Dex           string          `json:"dex"`
	QuoteAddress  string          `json:"quote_address"`
	QuoteSymbol   string          `json:"quote_symbol"`
	LiquidityUSD  decimal.Decimal `json:"liquidity_usd"`
	LiquidityBase decimal.Decimal `json:"liquidity_base"`
	SpotPriceUSD  decimal.Decimal `json:"spot_price_usd"` // 由储备推出的池内现价，算不出为 0
	IsV3          bool            `json:"is_v3"`
}

// LP 安全状态
const (
	LPStateBurned    = "burned"
	LPStateLocked    = "locked"
	LPStateUnsecured = "unsecured"
	LPStateUnknown   = "unknown" // V3 集中流动性仓位无法做 burn/lock 判定
)

// LPSecurityStatus 主池 LP 份额的销毁/锁仓判定结果
type LPSecurityStatus struct {
	State            string          `json:"state"`
	BurnedPct        decimal.Decimal `json:"burned_pct"`
	LockedPct        decimal.Decimal `json:"locked_pct"`
	LockPlatform     *string         `json:"lock_platform,omitempty"`
	LockDurationDays *int            `json:"lock_duration_days,omitempty"`
}

// LPStatusDegraded LP 份额数据读不到时的中性结果：按未加保护处理，不给加分
func LPStatusDegraded() LPSecurityStatus {
	return LPSecurityStatus{State: LPStateUnsecured}
}

// PoolReserves 链上网关返回的池储备快照
type PoolReserves struct {
	Token0   string
	Token1   string
	Reserve0 decimal.Decimal
	Reserve1 decimal.Decimal
}
