package service

import (
	"context"
	"math/big"

	"web3-risk/internal/analyzer/model"

	"github.com/shopspring/decimal"
)

// ChainGateway 链上只读数据源，由 gateway/chain 实现
type ChainGateway interface {
	GetTokenMetadata(ctx context.Context, address string) (*model.TokenMetadata, error)
	GetPairV2(ctx context.Context, factory, tokenA, tokenB string) (string, error)
	GetPoolV3(ctx context.Context, factory, tokenA, tokenB string, fee int64) (string, error)
	GetPoolReserves(ctx context.Context, pool string) (*model.PoolReserves, error)
	IsPoolLike(ctx context.Context, address string) bool
	BalanceOf(ctx context.Context, token, holder string) (*big.Int, error)
	TotalSupply(ctx context.Context, token string) (*big.Int, error)
	Decimals(ctx context.Context, token string) (uint8, error)
	GetContractBytecode(ctx context.Context, address string) ([]byte, error)
}

// MarketGateway 行情/历史数据源，由 gateway/market 实现
type MarketGateway interface {
	GetTokenInfo(ctx context.Context, network, token string) (*model.TokenInfo, error)
	GetTopHolders(ctx context.Context, network, token string, limit int) ([]model.HolderBalance, error)
	GetWalletNetWorth(ctx context.Context, network, wallet string) (decimal.Decimal, error)
	GetTransferHistory(ctx context.Context, network, wallet, token string, since int64) ([]model.Transfer, error)
	GetTokenActivity(ctx context.Context, network, token string, since int64) (int, error)
	GetPrice(ctx context.Context, network, token string) (*model.PriceQuote, error)
	GetPrices(ctx context.Context, network string, tokens []string) (map[string]decimal.Decimal, error)
}
