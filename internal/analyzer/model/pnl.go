package model

import "github.com/shopspring/decimal"

// 转账方向
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)

// Transfer 规整后的单笔转账，行情网关保证按时间升序返回
type Transfer struct {
	TxHash       string          `json:"tx_hash"`
	Wallet       string          `json:"wallet"`
	TokenAddress string          `json:"token_address"`
	Amount       decimal.Decimal `json:"amount"`
	ValueBase    decimal.Decimal `json:"value_base"` // 成交时的计价资产对价
	ValueUSD     decimal.Decimal `json:"value_usd"`  // 成交时的美元估值，取不到为 0
	Direction    string          `json:"direction"`
	Timestamp    int64           `json:"timestamp"`
}

// Lot 买入批次。Remaining 只减不增，批次之间不合并
type Lot struct {
	TxHash    string          `json:"tx_hash"`
	Remaining decimal.Decimal `json:"remaining"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Timestamp int64           `json:"timestamp"`
}

// TokenPNL 单代币盈亏。Total == Realized + Unrealized 恒成立
type TokenPNL struct {
	Realized           decimal.Decimal `json:"realized"`
	Unrealized         decimal.Decimal `json:"unrealized"`
	Total              decimal.Decimal `json:"total"`
	RemainingQty       decimal.Decimal `json:"remaining_qty"`
	AvgBuyPrice        decimal.Decimal `json:"avg_buy_price"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	PriceUnavailable   bool            `json:"price_unavailable"`
	HistoryUnavailable bool            `json:"history_unavailable"` // 转账历史取不到，结果为空而非缺项
	DataInconsistency  bool            `json:"data_inconsistency"`
}

// PNLReport 钱包级盈亏汇总
type PNLReport struct {
	Wallet          string               `json:"wallet"`
	PerToken        map[string]*TokenPNL `json:"per_token"`
	TotalRealized   decimal.Decimal      `json:"total_realized"`
	TotalUnrealized decimal.Decimal      `json:"total_unrealized"`
	TotalPNL        decimal.Decimal      `json:"total_pnl"`
}

// PriceQuote 预言机报价
type PriceQuote struct {
	PriceUSD   decimal.Decimal `json:"price_usd"`
	Confidence decimal.Decimal `json:"confidence"`
}
