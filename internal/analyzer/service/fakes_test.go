package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errFakeMissing = errors.New("fake: no data")

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testConfig() config.Config {
	return config.Config{
		Chain: config.ChainConfig{
			Network:   "BSC",
			FactoryV2: "0x00000000000000000000000000000000000000f2",
			QuoteAssets: []config.QuoteAsset{
				{Symbol: "WBNB", Address: "0x00000000000000000000000000000000000000aa"},
			},
			Lockers: []config.Locker{
				{Platform: "PinkLock", Address: "0x00000000000000000000000000000000000000cc"},
			},
			BurnAddresses: []string{
				"0x000000000000000000000000000000000000dEaD",
				"0x0000000000000000000000000000000000000000",
			},
		},
		Analyzer: config.AnalyzerConfig{
			WorkerNum:          4,
			TopHolderCount:     10,
			EnrichMinPct:       0.5,
			LookbackDays:       90,
			DiamondHandsDays:   7,
			WhaleNetWorthUSD:   1_000_000,
			WhaleHoldingUSD:    500_000,
			HugeTransferUSD:    10_000,
			BurnedThresholdPct: 95,
			LockedThresholdPct: 50,
		},
		Honeypot: config.HoneypotConfig{
			IndicatorThreshold:     2,
			OwnerBalanceHighPct:    95,
			OwnerBalanceExtremePct: 99,
			ShortCircuitMinLiqUSD:  1000,
			ShortCircuitSellTaxPct: 100,
		},
	}
}

func lower(addr string) string { return strings.ToLower(addr) }

// fakeChain 链上网关桩，按地址返回预置数据
type fakeChain struct {
	meta     *model.TokenMetadata
	pairsV2  map[string]string // lower(quote) -> pool
	poolsV3  map[string]string // lower(quote)/fee -> pool
	reserves map[string]*model.PoolReserves
	poolLike map[string]bool
	balances map[string]*big.Int // lower(token)|lower(holder)
	supplies map[string]*big.Int
	decimals map[string]uint8
	bytecode []byte
}

func (f *fakeChain) GetTokenMetadata(ctx context.Context, address string) (*model.TokenMetadata, error) {
	if f.meta == nil {
		return nil, errFakeMissing
	}
	copied := *f.meta
	return &copied, nil
}

func (f *fakeChain) GetPairV2(ctx context.Context, factory, tokenA, tokenB string) (string, error) {
	return f.pairsV2[lower(tokenB)], nil
}

func (f *fakeChain) GetPoolV3(ctx context.Context, factory, tokenA, tokenB string, fee int64) (string, error) {
	return f.poolsV3[fmt.Sprintf("%s/%d", lower(tokenB), fee)], nil
}

func (f *fakeChain) GetPoolReserves(ctx context.Context, pool string) (*model.PoolReserves, error) {
	if r, ok := f.reserves[lower(pool)]; ok {
		return r, nil
	}
	return nil, errFakeMissing
}

func (f *fakeChain) IsPoolLike(ctx context.Context, address string) bool {
	return f.poolLike[lower(address)]
}

func (f *fakeChain) BalanceOf(ctx context.Context, token, holder string) (*big.Int, error) {
	if b, ok := f.balances[lower(token)+"|"+lower(holder)]; ok {
		return b, nil
	}
	return nil, errFakeMissing
}

func (f *fakeChain) TotalSupply(ctx context.Context, token string) (*big.Int, error) {
	if s, ok := f.supplies[lower(token)]; ok {
		return s, nil
	}
	return nil, errFakeMissing
}

func (f *fakeChain) Decimals(ctx context.Context, token string) (uint8, error) {
	if d, ok := f.decimals[lower(token)]; ok {
		return d, nil
	}
	return 0, errFakeMissing
}

func (f *fakeChain) GetContractBytecode(ctx context.Context, address string) ([]byte, error) {
	if f.bytecode == nil {
		return nil, errFakeMissing
	}
	return f.bytecode, nil
}

// fakeMarket 行情网关桩
type fakeMarket struct {
	info        *model.TokenInfo
	holders     []model.HolderBalance
	netWorth    map[string]decimal.Decimal
	transfers   map[string][]model.Transfer // lower(wallet) -> history
	transferErr error
	activity    int
	price       decimal.Decimal
	prices      map[string]decimal.Decimal
	priceErr    error
}

func (f *fakeMarket) GetTokenInfo(ctx context.Context, network, token string) (*model.TokenInfo, error) {
	if f.info == nil {
		return nil, errFakeMissing
	}
	return f.info, nil
}

func (f *fakeMarket) GetTopHolders(ctx context.Context, network, token string, limit int) ([]model.HolderBalance, error) {
	return f.holders, nil
}

func (f *fakeMarket) GetWalletNetWorth(ctx context.Context, network, wallet string) (decimal.Decimal, error) {
	if v, ok := f.netWorth[lower(wallet)]; ok {
		return v, nil
	}
	return decimal.Zero, errFakeMissing
}

func (f *fakeMarket) GetTransferHistory(ctx context.Context, network, wallet, token string, since int64) ([]model.Transfer, error) {
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	if history, ok := f.transfers[lower(wallet)]; ok {
		return history, nil
	}
	return nil, nil
}

func (f *fakeMarket) GetTokenActivity(ctx context.Context, network, token string, since int64) (int, error) {
	return f.activity, nil
}

func (f *fakeMarket) GetPrice(ctx context.Context, network, token string) (*model.PriceQuote, error) {
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return &model.PriceQuote{PriceUSD: f.price, Confidence: decimal.NewFromInt(1)}, nil
}

func (f *fakeMarket) GetPrices(ctx context.Context, network string, tokens []string) (map[string]decimal.Decimal, error) {
	if f.prices == nil {
		return nil, errFakeMissing
	}
	return f.prices, nil
}
