package service

import (
	"context"
	"fmt"
	"strings"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"
	"web3-risk/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LPSet 已知池地址集合。PoolLocator 的 holder 对账会扩充它，
// 之后才允许 HolderAnalyzer 和评分器消费
type LPSet struct {
	addrs map[string]struct{}
}

func NewLPSet() *LPSet {
	return &LPSet{addrs: make(map[string]struct{})}
}

func (s *LPSet) Add(addr string) {
	s.addrs[strings.ToLower(addr)] = struct{}{}
}

func (s *LPSet) Contains(addr string) bool {
	_, ok := s.addrs[strings.ToLower(addr)]
	return ok
}

func (s *LPSet) Len() int {
	return len(s.addrs)
}

// PoolLocator 枚举 报价资产 × 工厂 × 费率档位 找出代币的所有交易池
type PoolLocator struct {
	cfg    config.Config
	tl     *zap.Logger
	chain  ChainGateway
	market MarketGateway
}

func NewPoolLocator(cfg config.Config, logger *zap.Logger, chainGw ChainGateway, marketGw MarketGateway) *PoolLocator {
	return &PoolLocator{cfg: cfg, tl: logger, chain: chainGw, market: marketGw}
}

// Locate 返回按地址去重后的有效池集合、已知池地址集和本次取到的报价资产价格
// （价格随后交给 Reconcile 复用，避免二次批量查询）
func (l *PoolLocator) Locate(ctx context.Context, meta *model.TokenMetadata) ([]model.LiquidityPool, *LPSet, map[string]decimal.Decimal) {
	quoteAddrs := make([]string, 0, len(l.cfg.Chain.QuoteAssets))
	for _, q := range l.cfg.Chain.QuoteAssets {
		quoteAddrs = append(quoteAddrs, q.Address)
	}

	// 报价资产的美元价一次性批量取，缺价的池 LiquidityUSD 记 0
	quotePrices, err := l.market.GetPrices(ctx, l.cfg.Chain.Network, quoteAddrs)
	if err != nil {
		l.tl.Warn("quote prices unavailable, pool USD liquidity degrades to zero", zap.Error(err))
		quotePrices = map[string]decimal.Decimal{}
	}

	lpSet := NewLPSet()
	var pools []model.LiquidityPool

	for _, quote := range l.cfg.Chain.QuoteAssets {
		if l.cfg.Chain.FactoryV2 != "" {
			pair, err := l.chain.GetPairV2(ctx, l.cfg.Chain.FactoryV2, meta.Address, quote.Address)
			if err != nil {
				l.tl.Debug("v2 factory lookup failed", zap.String("quote", quote.Symbol), zap.Error(err))
			} else if pair != "" {
				l.appendPool(ctx, &pools, lpSet, meta, pair, quote, "v2", false, quotePrices)
			}
		}

		if l.cfg.Chain.FactoryV3 == "" {
			continue
		}
		for _, fee := range l.cfg.Chain.V3FeeTiers {
			pool, err := l.chain.GetPoolV3(ctx, l.cfg.Chain.FactoryV3, meta.Address, quote.Address, fee)
			if err != nil {
				l.tl.Debug("v3 factory lookup failed", zap.String("quote", quote.Symbol), zap.Int64("fee", fee), zap.Error(err))
				continue
			}
			if pool != "" {
				l.appendPool(ctx, &pools, lpSet, meta, pool, quote, fmt.Sprintf("v3/%d", fee), true, quotePrices)
			}
		}
	}

	return pools, lpSet, quotePrices
}

// appendPool 校验候选池并入集。校验方式是真的去读一次储备，
// 读不到的地址直接丢弃
func (l *PoolLocator) appendPool(ctx context.Context, pools *[]model.LiquidityPool, lpSet *LPSet,
	meta *model.TokenMetadata, poolAddr string, quote config.QuoteAsset, dex string, isV3 bool,
	quotePrices map[string]decimal.Decimal) {

	if lpSet.Contains(poolAddr) {
		return
	}

	reserves, err := l.chain.GetPoolReserves(ctx, poolAddr)
	if err != nil {
		l.tl.Debug("candidate pool failed reserve validation", zap.String("pool", poolAddr), zap.Error(err))
		return
	}

	pool := l.buildPool(ctx, meta, poolAddr, quote, dex, isV3, reserves, quotePrices)
	if pool == nil {
		return
	}

	lpSet.Add(poolAddr)
	*pools = append(*pools, *pool)
}

func (l *PoolLocator) buildPool(ctx context.Context, meta *model.TokenMetadata, poolAddr string,
	quote config.QuoteAsset, dex string, isV3 bool, reserves *model.PoolReserves,
	quotePrices map[string]decimal.Decimal) *model.LiquidityPool {

	var quoteReserve, tokenReserve decimal.Decimal
	switch {
	case utils.SameAddress(reserves.Token0, quote.Address):
		quoteReserve, tokenReserve = reserves.Reserve0, reserves.Reserve1
	case utils.SameAddress(reserves.Token1, quote.Address):
		quoteReserve, tokenReserve = reserves.Reserve1, reserves.Reserve0
	default:
		// 工厂返回的池两侧都不是期望的报价资产，丢弃
		return nil
	}

	quoteDec, err := l.chain.Decimals(ctx, quote.Address)
	if err != nil {
		l.tl.Debug("quote decimals unavailable", zap.String("quote", quote.Address), zap.Error(err))
		return nil
	}

	liquidityBase := quoteReserve.Div(decimal.New(1, int32(quoteDec)))
	tokenAmount := tokenReserve.Div(decimal.New(1, int32(meta.Decimals)))

	pool := &model.LiquidityPool{
		Address:       utils.ChecksumAddress(poolAddr),
		Dex:           dex,
		QuoteAddress:  utils.ChecksumAddress(quote.Address),
		QuoteSymbol:   quote.Symbol,
		LiquidityBase: liquidityBase,
		IsV3:          isV3,
	}

	if quoteUSD, ok := quotePrices[utils.ChecksumAddress(quote.Address)]; ok && quoteUSD.IsPositive() {
		// 美元流动性按双边计：报价侧 × 2
		pool.LiquidityUSD = liquidityBase.Mul(quoteUSD).Mul(decimal.NewFromInt(2))
		if tokenAmount.IsPositive() {
			pool.SpotPriceUSD = liquidityBase.Mul(quoteUSD).Div(tokenAmount)
		}
	}

	return pool
}

// Reconcile 在前 N 大持有人里找表现得像池、但工厂查不到的地址
// （第三方或迁移过的池）。会扩充 lpSet，因此必须在持仓分析之前执行
func (l *PoolLocator) Reconcile(ctx context.Context, meta *model.TokenMetadata,
	pools []model.LiquidityPool, lpSet *LPSet, holders []model.HolderBalance,
	quotePrices map[string]decimal.Decimal) []model.LiquidityPool {

	for _, h := range holders {
		if lpSet.Contains(h.Address) || !h.IsContract {
			continue
		}
		if !l.chain.IsPoolLike(ctx, h.Address) {
			continue
		}

		reserves, err := l.chain.GetPoolReserves(ctx, h.Address)
		if err != nil {
			continue
		}

		// 找出哪一侧是已知报价资产；都不是的按无法定价的外部池处理
		var pool *model.LiquidityPool
		for _, quote := range l.cfg.Chain.QuoteAssets {
			if utils.SameAddress(reserves.Token0, quote.Address) || utils.SameAddress(reserves.Token1, quote.Address) {
				pool = l.buildPool(ctx, meta, h.Address, quote, "external", false, reserves, quotePrices)
				break
			}
		}
		if pool == nil {
			pool = &model.LiquidityPool{
				Address: utils.ChecksumAddress(h.Address),
				Dex:     "external",
			}
		}

		l.tl.Info("reconciled unregistered pool from holder set",
			zap.String("pool", pool.Address), zap.String("token", meta.Address))
		lpSet.Add(h.Address)
		pools = append(pools, *pool)
	}

	return pools
}
