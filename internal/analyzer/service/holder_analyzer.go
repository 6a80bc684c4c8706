package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"
	"web3-risk/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const reportingSetSize = 10

// HolderAnalyzer 持仓分布分析：角色分类、集中度、whale/diamond-hands 标签
type HolderAnalyzer struct {
	cfg    config.Config
	tl     *zap.Logger
	market MarketGateway
}

func NewHolderAnalyzer(cfg config.Config, logger *zap.Logger, marketGw MarketGateway) *HolderAnalyzer {
	return &HolderAnalyzer{cfg: cfg, tl: logger, market: marketGw}
}

// Analyze 对前 N 大持有人做分类与标签补充。
// totalHolders 为外部计数源给出的总数，0 表示不可用，回退为 len(raw)。
// now 是唯一的时间来源，持有天数只从它推导
func (a *HolderAnalyzer) Analyze(ctx context.Context, meta *model.TokenMetadata,
	raw []model.HolderBalance, lpSet *LPSet, totalHolders int, now time.Time) model.HolderAnalysis {

	if len(raw) == 0 {
		return model.HolderAnalysis{
			RiskFactors: []string{"Could not retrieve holder data"},
		}
	}

	holders := make([]model.Holder, 0, len(raw))
	for _, hb := range raw {
		balance := hb.BalanceRaw.Div(decimal.New(1, int32(meta.Decimals)))
		h := model.Holder{
			Address:            hb.Address,
			BalanceRaw:         hb.BalanceRaw,
			Balance:            balance,
			PercentageOfSupply: utils.ToPct(balance, meta.TotalSupply),
			Role:               a.classify(meta, lpSet, hb.Address),
		}
		holders = append(holders, h)
	}

	// 池持有人排最前，其余按占比降序
	sort.SliceStable(holders, func(i, j int) bool {
		li, lj := holders[i].Role == model.RoleLiquidity, holders[j].Role == model.RoleLiquidity
		if li != lj {
			return li
		}
		return holders[i].PercentageOfSupply.GreaterThan(holders[j].PercentageOfSupply)
	})

	top := holders
	if len(top) > reportingSetSize {
		top = top[:reportingSetSize]
	}

	a.enrich(ctx, meta, top, now)

	analysis := model.HolderAnalysis{
		TotalHolders: len(raw),
		Top10:        top,
	}
	if totalHolders > analysis.TotalHolders {
		analysis.TotalHolders = totalHolders
	}

	lpCount := 0
	for _, h := range top {
		analysis.Top10Pct = analysis.Top10Pct.Add(h.PercentageOfSupply)
		if h.Role == model.RoleLiquidity {
			lpCount++
		} else {
			analysis.Top10ExclLPPct = analysis.Top10ExclLPPct.Add(h.PercentageOfSupply)
		}
		if h.IsDiamondHands {
			analysis.DiamondHandCount++
		}
	}

	analysis.RiskFactors = a.riskFactors(analysis, top, lpCount)
	return analysis
}

func (a *HolderAnalyzer) classify(meta *model.TokenMetadata, lpSet *LPSet, addr string) string {
	if lpSet.Contains(addr) {
		return model.RoleLiquidity
	}
	if meta.CreatorAddress != nil && utils.SameAddress(addr, *meta.CreatorAddress) {
		return model.RoleCreator
	}
	if meta.OwnerAddress != nil && utils.SameAddress(addr, *meta.OwnerAddress) {
		return model.RoleOwner
	}
	return model.RoleRegular
}

// enrich 对占比超过阈值的普通持有人并发补充标签，失败只影响单个持有人
func (a *HolderAnalyzer) enrich(ctx context.Context, meta *model.TokenMetadata, top []model.Holder, now time.Time) {
	minPct := decimal.NewFromFloat(a.cfg.Analyzer.EnrichMinPct)

	p := pool.New().WithMaxGoroutines(a.cfg.Analyzer.WorkerNum)
	for i := range top {
		if top[i].Role != model.RoleRegular || !top[i].PercentageOfSupply.GreaterThan(minPct) {
			continue
		}
		h := &top[i]
		p.Go(func() {
			a.enrichOne(ctx, meta, h, now)
		})
	}
	p.Wait()
}

func (a *HolderAnalyzer) enrichOne(ctx context.Context, meta *model.TokenMetadata, h *model.Holder, now time.Time) {
	currentPrice := decimal.Zero
	if meta.PriceUsd != nil {
		currentPrice = *meta.PriceUsd
	}
	tokenValueUSD := h.Balance.Mul(currentPrice)

	// whale：全仓估值或单币持仓估值超阈值
	netWorth, err := a.market.GetWalletNetWorth(ctx, a.cfg.Chain.Network, h.Address)
	if err != nil {
		a.tl.Debug("net worth unavailable", zap.String("wallet", h.Address), zap.Error(err))
		netWorth = decimal.Zero
	}
	if netWorth.GreaterThan(decimal.NewFromFloat(a.cfg.Analyzer.WhaleNetWorthUSD)) ||
		tokenValueUSD.GreaterThan(decimal.NewFromFloat(a.cfg.Analyzer.WhaleHoldingUSD)) {
		h.IsWhale = true
		h.WhaleValueUSD = decimal.Max(netWorth, tokenValueUSD)
	}

	since := now.AddDate(0, 0, -a.cfg.Analyzer.LookbackDays).Unix()
	transfers, err := a.market.GetTransferHistory(ctx, a.cfg.Chain.Network, h.Address, meta.Address, since)
	if err != nil {
		a.tl.Debug("transfer history unavailable", zap.String("wallet", h.Address), zap.Error(err))
		return
	}

	if len(transfers) == 0 {
		// 回看窗口内完全没有动过，持有天数记满窗口，按定义算 diamond hands
		h.HoldingDays = a.cfg.Analyzer.LookbackDays
		h.IsDiamondHands = true
		return
	}

	hugeThreshold := decimal.NewFromFloat(a.cfg.Analyzer.HugeTransferUSD)
	for _, t := range transfers {
		// 优先用转账时点的美元估值，取不到再用现价折算
		valueUSD := t.ValueUSD
		if valueUSD.IsZero() {
			valueUSD = t.Amount.Mul(currentPrice)
		}
		if valueUSD.GreaterThan(h.LargestTransferUSD) {
			h.LargestTransferUSD = valueUSD
		}
		if valueUSD.GreaterThan(hugeThreshold) {
			h.IsHugeValueTrader = true
		}
	}

	for _, t := range transfers {
		if t.Direction == model.DirectionBuy {
			h.HoldingDays = int(now.Unix()-t.Timestamp) / 86400
			break
		}
	}
	h.IsDiamondHands = h.HoldingDays > a.cfg.Analyzer.DiamondHandsDays
}

func (a *HolderAnalyzer) riskFactors(analysis model.HolderAnalysis, top []model.Holder, lpCount int) []string {
	var factors []string

	exclLP := analysis.Top10ExclLPPct
	switch {
	case exclLP.GreaterThan(decimal.NewFromInt(80)):
		factors = append(factors, fmt.Sprintf("Critical holder concentration: top holders control %s%% of supply excluding liquidity pools", exclLP.StringFixed(2)))
	case exclLP.GreaterThan(decimal.NewFromInt(60)):
		factors = append(factors, fmt.Sprintf("High holder concentration: top holders control %s%% of supply excluding liquidity pools", exclLP.StringFixed(2)))
	case exclLP.GreaterThan(decimal.NewFromInt(40)):
		factors = append(factors, fmt.Sprintf("Elevated holder concentration: top holders control %s%% of supply excluding liquidity pools", exclLP.StringFixed(2)))
	}

	for _, h := range top {
		if h.Role != model.RoleLiquidity && h.PercentageOfSupply.GreaterThan(decimal.NewFromInt(30)) {
			factors = append(factors, fmt.Sprintf("Single holder %s controls %s%% of supply", h.Address, h.PercentageOfSupply.StringFixed(2)))
		}
	}

	if lpCount == 0 {
		factors = append(factors, "No liquidity pool found among top holders")
	}

	if analysis.DiamondHandCount < 3 {
		factors = append(factors, fmt.Sprintf("Only %d of the top %d holders are long-term holders", analysis.DiamondHandCount, len(top)))
	}

	return factors
}
