package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"web3-risk/internal/analyzer/cache"
	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"
	"web3-risk/internal/analyzer/monitor"
	"web3-risk/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrTokenNotFound 元数据取不到时整个分析中止，下游都依赖 decimals/totalSupply
var ErrTokenNotFound = errors.New("token not found")

// Engine 单代币风险分析与钱包盈亏的编排器。
// 无状态、幂等：相同输入快照（含显式传入的 now）产出字节一致的报告
type Engine struct {
	cfg    config.Config
	tl     *zap.Logger
	chain  ChainGateway
	market MarketGateway
	cache  cache.Cache

	locator        *PoolLocator
	lpVerifier     *LPSecurityVerifier
	holderAnalyzer *HolderAnalyzer
	honeypot       *HoneypotDetector
	deviation      *PriceDeviationChecker
	scorer         *SafetyScorer
	ledger         *PositionLedger
}

func NewEngine(cfg config.Config, logger *zap.Logger, chainGw ChainGateway, marketGw MarketGateway, reportCache cache.Cache) *Engine {
	return &Engine{
		cfg:    cfg,
		tl:     logger,
		chain:  chainGw,
		market: marketGw,
		cache:  reportCache,

		locator:        NewPoolLocator(cfg, logger, chainGw, marketGw),
		lpVerifier:     NewLPSecurityVerifier(cfg, logger, chainGw),
		holderAnalyzer: NewHolderAnalyzer(cfg, logger, marketGw),
		honeypot:       NewHoneypotDetector(cfg.Honeypot, logger),
		deviation:      NewPriceDeviationChecker(logger),
		scorer:         NewSafetyScorer(cfg, logger),
		ledger:         NewPositionLedger(cfg, logger, marketGw),
	}
}

// AnalyzeToken 产出单代币风险报告。
// 元数据失败是致命错误；其余子分析各自降级为中性结果，评分永远会给出
func (e *Engine) AnalyzeToken(ctx context.Context, tokenAddr string, now time.Time) (*model.RiskReport, error) {
	network := e.cfg.Chain.Network
	tokenAddr = utils.ChecksumAddress(tokenAddr)

	key := cache.ReportKey("report", network, tokenAddr)
	if e.cache != nil {
		if cached, found := cache.GetTyped[model.RiskReport](ctx, e.cache, key); found {
			monitor.ReportCacheHits.WithLabelValues("risk").Inc()
			return cached, nil
		}
		monitor.ReportCacheMisses.WithLabelValues("risk").Inc()
	}

	monitor.AnalysisRuns.WithLabelValues(network).Inc()
	start := time.Now()
	defer func() {
		monitor.AnalysisDuration.WithLabelValues(network).Observe(time.Since(start).Seconds())
	}()

	meta, err := e.chain.GetTokenMetadata(ctx, tokenAddr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTokenNotFound, tokenAddr, err)
	}

	totalHolders := e.supplementMetadata(ctx, meta)

	holders, err := e.market.GetTopHolders(ctx, network, meta.Address, e.cfg.Analyzer.TopHolderCount)
	if err != nil {
		e.tl.Warn("top holders unavailable", zap.String("token", meta.Address), zap.Error(err))
		monitor.SubAnalysisFailures.WithLabelValues("holders").Inc()
		holders = nil
	}

	// 池发现和 holder 对账会改写已知池地址集，必须先于持仓分析和评分
	pools, lpSet, quotePrices := e.locator.Locate(ctx, meta)
	pools = e.locator.Reconcile(ctx, meta, pools, lpSet, holders, quotePrices)
	mainPool := pickMainPool(pools)

	var (
		lpSecurity     model.LPSecurityStatus
		holderAnalysis model.HolderAnalysis
		honeypotF      model.HoneypotFinding
		deviationR     model.PriceDeviationResult
		activityCount  int
		activityKnown  bool
	)

	// 剩余子分析互相独立，限定并发数后同时跑，慢的/失败的互不拖累
	p := pool.New().WithMaxGoroutines(e.cfg.Analyzer.WorkerNum)
	p.Go(func() { lpSecurity = e.lpVerifier.Verify(ctx, mainPool) })
	p.Go(func() { holderAnalysis = e.holderAnalyzer.Analyze(ctx, meta, holders, lpSet, totalHolders, now) })
	p.Go(func() { honeypotF = e.detectHoneypot(ctx, meta, holders, pools) })
	p.Go(func() { deviationR = e.checkDeviation(meta, mainPool) })
	p.Go(func() { activityCount, activityKnown = e.fetchActivity(ctx, meta, now) })
	p.Wait()

	// 被取消的分析丢弃所有部分结果
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	breakdown, total, tier, factors, recs := e.scorer.Score(ScoreInput{
		Meta:          meta,
		Pools:         pools,
		LPSecurity:    lpSecurity,
		Holders:       holderAnalysis,
		Honeypot:      honeypotF,
		Deviation:     deviationR,
		ActivityCount: activityCount,
		ActivityKnown: activityKnown,
		Now:           now,
	})

	report := &model.RiskReport{
		Metadata:        *meta,
		Pools:           pools,
		MainPool:        mainPool,
		LPSecurity:      lpSecurity,
		HolderAnalysis:  holderAnalysis,
		Honeypot:        honeypotF,
		PriceDeviation:  deviationR,
		Breakdown:       breakdown,
		TotalScore:      total,
		RiskTier:        tier,
		RiskFactors:     factors,
		Recommendations: recs,
		GeneratedAt:     now.Unix(),
	}

	if e.cache != nil {
		ttl := time.Duration(e.cfg.Analyzer.ReportCacheTTLMin) * time.Minute
		cache.PutTyped(ctx, e.cache, e.tl, key, report, ttl)
	}
	return report, nil
}

// AnalyzeWalletPNL 重建钱包在给定代币集合上的 FIFO 盈亏
func (e *Engine) AnalyzeWalletPNL(ctx context.Context, wallet string, tokens []string, now time.Time) (*model.PNLReport, error) {
	wallet = utils.ChecksumAddress(wallet)

	key := cache.ReportKey("pnl", e.cfg.Chain.Network, wallet)
	if e.cache != nil {
		if cached, found := cache.GetTyped[model.PNLReport](ctx, e.cache, key); found {
			monitor.ReportCacheHits.WithLabelValues("pnl").Inc()
			return cached, nil
		}
		monitor.ReportCacheMisses.WithLabelValues("pnl").Inc()
	}

	report, err := e.ledger.BuildReport(ctx, wallet, tokens, now)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		ttl := time.Duration(e.cfg.Analyzer.ReportCacheTTLMin) * time.Minute
		cache.PutTyped(ctx, e.cache, e.tl, key, report, ttl)
	}
	return report, nil
}

// supplementMetadata 用行情网关补齐链上读不到的字段，失败只降级
func (e *Engine) supplementMetadata(ctx context.Context, meta *model.TokenMetadata) int {
	network := e.cfg.Chain.Network
	totalHolders := 0

	info, err := e.market.GetTokenInfo(ctx, network, meta.Address)
	if err != nil {
		e.tl.Warn("token info unavailable, verification state unknown", zap.String("token", meta.Address), zap.Error(err))
		monitor.SubAnalysisFailures.WithLabelValues("token_info").Inc()
	} else {
		meta.Verified = info.Verified
		meta.CreatedAt = info.CreatedAt
		if info.Creator != "" {
			creator := utils.ChecksumAddress(info.Creator)
			meta.CreatorAddress = &creator
		}
		totalHolders = info.TotalHolders
	}

	if quote, err := e.market.GetPrice(ctx, network, meta.Address); err == nil && quote.PriceUSD.IsPositive() {
		price := quote.PriceUSD
		meta.PriceUsd = &price
	} else if err != nil {
		e.tl.Warn("oracle price unavailable", zap.String("token", meta.Address), zap.Error(err))
		monitor.SubAnalysisFailures.WithLabelValues("oracle_price").Inc()
	}

	return totalHolders
}

func (e *Engine) detectHoneypot(ctx context.Context, meta *model.TokenMetadata,
	holders []model.HolderBalance, pools []model.LiquidityPool) model.HoneypotFinding {

	bytecode, err := e.chain.GetContractBytecode(ctx, meta.Address)
	if err != nil {
		e.tl.Warn("bytecode unavailable, honeypot heuristics degraded", zap.String("token", meta.Address), zap.Error(err))
		monitor.SubAnalysisFailures.WithLabelValues("honeypot").Inc()
		bytecode = nil
	}

	return e.honeypot.Detect(bytecode, meta, e.ownerBalancePct(ctx, meta, holders), totalLiquidityUSD(pools))
}

// ownerBalancePct owner 持仓占比。优先链上读余额，读不到退回持有人列表
func (e *Engine) ownerBalancePct(ctx context.Context, meta *model.TokenMetadata, holders []model.HolderBalance) decimal.Decimal {
	if meta.OwnerAddress == nil || !meta.TotalSupply.IsPositive() {
		return decimal.Zero
	}

	if bal, err := e.chain.BalanceOf(ctx, meta.Address, *meta.OwnerAddress); err == nil {
		return utils.ToPct(utils.AdjustDecimals(bal, meta.Decimals), meta.TotalSupply)
	}

	for _, h := range holders {
		if utils.SameAddress(h.Address, *meta.OwnerAddress) {
			balance := h.BalanceRaw.Div(decimal.New(1, int32(meta.Decimals)))
			return utils.ToPct(balance, meta.TotalSupply)
		}
	}
	return decimal.Zero
}

func (e *Engine) checkDeviation(meta *model.TokenMetadata, mainPool *model.LiquidityPool) model.PriceDeviationResult {
	oracle := decimal.Zero
	if meta.PriceUsd != nil {
		oracle = *meta.PriceUsd
	}
	poolPrice := decimal.Zero
	if mainPool != nil {
		poolPrice = mainPool.SpotPriceUSD
	}
	return e.deviation.Check(oracle, poolPrice)
}

func (e *Engine) fetchActivity(ctx context.Context, meta *model.TokenMetadata, now time.Time) (int, bool) {
	since := now.Add(-24 * time.Hour).Unix()
	count, err := e.market.GetTokenActivity(ctx, e.cfg.Chain.Network, meta.Address, since)
	if err != nil {
		e.tl.Warn("token activity unavailable", zap.String("token", meta.Address), zap.Error(err))
		monitor.SubAnalysisFailures.WithLabelValues("activity").Inc()
		return 0, false
	}
	return count, true
}

func pickMainPool(pools []model.LiquidityPool) *model.LiquidityPool {
	var main *model.LiquidityPool
	for i := range pools {
		if main == nil || pools[i].LiquidityUSD.GreaterThan(main.LiquidityUSD) {
			main = &pools[i]
		}
	}
	return main
}
