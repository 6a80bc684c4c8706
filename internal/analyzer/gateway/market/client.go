package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"
	"web3-risk/pkg/httpclient"
	"web3-risk/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client 行情/历史数据网关。重试由 httpclient 负责，重试耗尽后的错误
// 在引擎侧一律按"无数据"降级处理
type Client struct {
	baseURL    string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewClient(cfg config.MarketConfig, logger *zap.Logger) *Client {
	httpCfg := httpclient.HTTPClientConfig{
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 3,
		XApiKey:    cfg.APIKey,
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpclient.NewHTTPClient(httpCfg, logger),
		logger:     logger,
	}
}

// GetTokenInfo 获取链上读不到的代币信息（源码验证状态、创建时间、持有人总数）
func (m *Client) GetTokenInfo(ctx context.Context, network, tokenAddr string) (*model.TokenInfo, error) {
	var resp TokenInfoResp
	url := fmt.Sprintf("%s/api/v2.2/erc20/%s/info?chain=%s", m.baseURL, tokenAddr, strings.ToLower(network))
	if err := m.httpClient.Get(ctx, url, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch token info failed, token: %s, error: %w", tokenAddr, err)
	}
	return &model.TokenInfo{
		Verified:     resp.Verified,
		Creator:      utils.ChecksumAddress(resp.CreatorAddress),
		CreatedAt:    resp.CreatedAt,
		TotalHolders: resp.TotalHolders,
	}, nil
}

// GetTopHolders 获取前 N 大持有人，按余额降序
func (m *Client) GetTopHolders(ctx context.Context, network, tokenAddr string, limit int) ([]model.HolderBalance, error) {
	var resp HoldersResp
	url := fmt.Sprintf("%s/api/v2.2/erc20/%s/owners?chain=%s&limit=%d&order=DESC",
		m.baseURL, tokenAddr, strings.ToLower(network), limit)
	if err := m.httpClient.Get(ctx, url, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch token holders failed, token: %s, error: %w", tokenAddr, err)
	}

	holders := make([]model.HolderBalance, 0, len(resp.Result))
	for _, row := range resp.Result {
		balance, err := decimal.NewFromString(row.Balance)
		if err != nil {
			m.logger.Warn("skip holder with bad balance",
				zap.String("address", row.OwnerAddress), zap.String("balance", row.Balance))
			continue
		}
		holders = append(holders, model.HolderBalance{
			Address:    utils.ChecksumAddress(row.OwnerAddress),
			BalanceRaw: balance,
			IsContract: row.IsContract,
		})
	}
	return holders, nil
}

// GetHolderCount 持有人总数，单独暴露给分析器做 totalHolders 回填
func (m *Client) GetHolderCount(ctx context.Context, network, tokenAddr string) (int, error) {
	info, err := m.GetTokenInfo(ctx, network, tokenAddr)
	if err != nil {
		return 0, err
	}
	return info.TotalHolders, nil
}

// GetWalletNetWorth 钱包全部持仓的美元估值
func (m *Client) GetWalletNetWorth(ctx context.Context, network, wallet string) (decimal.Decimal, error) {
	var resp NetWorthResp
	url := fmt.Sprintf("%s/api/v2.2/wallets/%s/net-worth?chain=%s", m.baseURL, wallet, strings.ToLower(network))
	if err := m.httpClient.Get(ctx, url, nil, nil, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("fetch wallet net worth failed, wallet: %s, error: %w", wallet, err)
	}
	value, err := decimal.NewFromString(resp.TotalNetWorthUSD)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad net worth value %q: %w", resp.TotalNetWorthUSD, err)
	}
	return value, nil
}

// GetTransferHistory 钱包在单个代币上的转账历史，跟随 cursor 翻页，
// 返回前按时间升序排序
func (m *Client) GetTransferHistory(ctx context.Context, network, wallet, tokenAddr string, since int64) ([]model.Transfer, error) {
	var transfers []model.Transfer
	base := fmt.Sprintf("%s/api/v2.2/%s/erc20/transfers?chain=%s&contract_addresses=%s&from_date=%d",
		m.baseURL, wallet, strings.ToLower(network), tokenAddr, since)

	cursor := ""
	for {
		var resp TransfersResp
		url := base
		if cursor != "" {
			url = fmt.Sprintf("%s&cursor=%s", base, cursor)
		}
		if err := m.httpClient.Get(ctx, url, nil, nil, &resp); err != nil {
			return nil, fmt.Errorf("fetch transfer history failed, wallet: %s, token: %s, error: %w", wallet, tokenAddr, err)
		}

		for _, row := range resp.Result {
			transfers = append(transfers, m.normalizeTransfer(wallet, tokenAddr, row))
		}

		cursor = resp.Cursor
		if cursor == "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	sort.Slice(transfers, func(i, j int) bool { return transfers[i].Timestamp < transfers[j].Timestamp })
	return transfers, nil
}

func (m *Client) normalizeTransfer(wallet, tokenAddr string, row TransferRow) model.Transfer {
	direction := model.DirectionBuy
	if utils.SameAddress(row.FromAddress, wallet) {
		direction = model.DirectionSell
	}

	amount, err := decimal.NewFromString(row.ValueFormatted)
	if err != nil {
		amount = decimal.Zero
	}
	valueBase, err := decimal.NewFromString(row.ValueBase)
	if err != nil {
		valueBase = decimal.Zero
	}
	valueUSD := decimal.Zero
	if row.ValueUSD != "" {
		if v, err := decimal.NewFromString(row.ValueUSD); err == nil {
			valueUSD = v
		}
	}

	ts := row.BlockTimestamp
	if !utils.IsUnixSeconds(ts) {
		ts = ts / 1000
	}

	return model.Transfer{
		TxHash:       row.TxHash,
		Wallet:       utils.ChecksumAddress(wallet),
		TokenAddress: utils.ChecksumAddress(tokenAddr),
		Amount:       amount,
		ValueBase:    valueBase,
		ValueUSD:     valueUSD,
		Direction:    direction,
		Timestamp:    ts,
	}
}

// GetTokenActivity 代币近期成交活跃度，供 trading 评分桶使用
func (m *Client) GetTokenActivity(ctx context.Context, network, tokenAddr string, since int64) (int, error) {
	var resp ActivityResp
	url := fmt.Sprintf("%s/api/v2.2/erc20/%s/activity?chain=%s&from_date=%d",
		m.baseURL, tokenAddr, strings.ToLower(network), since)
	if err := m.httpClient.Get(ctx, url, nil, nil, &resp); err != nil {
		return 0, fmt.Errorf("fetch token activity failed, token: %s, error: %w", tokenAddr, err)
	}
	return resp.TotalTransfers, nil
}

// GetPrice 单币美元价与置信度
func (m *Client) GetPrice(ctx context.Context, network, tokenAddr string) (*model.PriceQuote, error) {
	var resp PriceResp
	url := fmt.Sprintf("%s/api/v2.2/erc20/%s/price?chain=%s", m.baseURL, tokenAddr, strings.ToLower(network))
	if err := m.httpClient.Get(ctx, url, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch price failed, token: %s, error: %w", tokenAddr, err)
	}
	return &model.PriceQuote{
		PriceUSD:   decimal.NewFromFloat(resp.USDPrice),
		Confidence: decimal.NewFromFloat(resp.Confidence),
	}, nil
}

// GetPrices 批量价格查询
func (m *Client) GetPrices(ctx context.Context, network string, tokenAddrs []string) (map[string]decimal.Decimal, error) {
	if len(tokenAddrs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	body := map[string]interface{}{"tokens": tokenAddrs, "chain": strings.ToLower(network)}
	var resp PricesResp
	url := fmt.Sprintf("%s/api/v2.2/erc20/prices", m.baseURL)
	if err := m.httpClient.PostJSON(ctx, url, body, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch batch prices failed, error: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(resp.Result))
	for _, row := range resp.Result {
		prices[utils.ChecksumAddress(row.TokenAddress)] = decimal.NewFromFloat(row.USDPrice)
	}
	return prices, nil
}
