package market

// TokenInfoResp 代币补充信息响应
type TokenInfoResp struct {
	Verified       bool   `json:"verified"`
	CreatedAt      *int64 `json:"created_at"`
	CreatorAddress string `json:"creator_address"` // 部署者地址，可为空
	TotalHolders   int    `json:"total_holders"`
}

// HoldersResp 持有人分页响应
type HoldersResp struct {
	Cursor       string      `json:"cursor"`
	Page         int         `json:"page"`
	PageSize     int         `json:"page_size"`
	TotalHolders int         `json:"total_holders"`
	Result       []HolderRow `json:"result"`
}

// HolderRow 单个持有人
type HolderRow struct {
	OwnerAddress string `json:"owner_address"` // 持有者钱包地址
	Balance      string `json:"balance"`       // 原始余额字符串
	IsContract   bool   `json:"is_contract"`   // 是否为合约地址
	USDValue     string `json:"usd_value"`     // 美元估值字符串（高精度）
}

// NetWorthResp 钱包总资产估值响应
type NetWorthResp struct {
	TotalNetWorthUSD string `json:"total_networth_usd"`
}

// TransfersResp 转账历史分页响应
type TransfersResp struct {
	Cursor string        `json:"cursor"`
	Result []TransferRow `json:"result"`
}

// TransferRow 单笔转账
type TransferRow struct {
	TxHash         string `json:"transaction_hash"`
	FromAddress    string `json:"from_address"`
	ToAddress      string `json:"to_address"`
	Value          string `json:"value"`           // 原始数量字符串
	ValueFormatted string `json:"value_formatted"` // 带精度的数量
	ValueBase      string `json:"value_base"`      // 成交时计价资产对价
	ValueUSD       string `json:"value_usd"`       // 成交时美元估值，可为空
	BlockTimestamp int64  `json:"block_timestamp"`
}

// PriceResp 单币价格响应
type PriceResp struct {
	USDPrice   float64 `json:"usdPrice"`
	Confidence float64 `json:"confidence"`
}

// PricesResp 批量价格响应
type PricesResp struct {
	Result []BatchPriceRow `json:"result"`
}

// BatchPriceRow 批量价格中的一行
type BatchPriceRow struct {
	TokenAddress string  `json:"tokenAddress"`
	USDPrice     float64 `json:"usdPrice"`
}

// ActivityResp 代币近期成交活跃度响应
type ActivityResp struct {
	TotalTransfers int `json:"total_transfers"`
	TotalBuys      int `json:"total_buys"`
	TotalSells     int `json:"total_sells"`
}
