package service

import (
	"context"
	"sync"
	"time"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"
	"web3-risk/internal/analyzer/monitor"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// PositionLedger 基于 FIFO 批次匹配重建钱包单币盈亏
type PositionLedger struct {
	cfg    config.Config
	tl     *zap.Logger
	market MarketGateway
}

func NewPositionLedger(cfg config.Config, logger *zap.Logger, marketGw MarketGateway) *PositionLedger {
	return &PositionLedger{cfg: cfg, tl: logger, market: marketGw}
}

// MatchFIFO 双游标 FIFO 匹配。transfers 必须按时间升序。
// 批次消耗顺序是正确性约束，这里绝不能并行或重排。
// 卖出量超过累计买入量时按可用批次截断并标记数据不一致，
// 剩余数量永不为负。priceKnown 为假时未实现盈亏记 0 并显式标记
func MatchFIFO(transfers []model.Transfer, currentPrice decimal.Decimal, priceKnown bool) *model.TokenPNL {
	var lots []model.Lot
	pnl := &model.TokenPNL{}

	for _, t := range transfers {
		if t.Direction != model.DirectionBuy || !t.Amount.IsPositive() {
			continue
		}
		lots = append(lots, model.Lot{
			TxHash:    t.TxHash,
			Remaining: t.Amount,
			UnitCost:  t.ValueBase.Div(t.Amount),
			Timestamp: t.Timestamp,
		})
	}

	cursor := 0
	for _, t := range transfers {
		if t.Direction != model.DirectionSell || !t.Amount.IsPositive() {
			continue
		}
		sellUnit := t.ValueBase.Div(t.Amount)
		sellRemaining := t.Amount

		for sellRemaining.IsPositive() && cursor < len(lots) {
			lot := &lots[cursor]
			matched := decimal.Min(sellRemaining, lot.Remaining)
			pnl.Realized = pnl.Realized.Add(matched.Mul(sellUnit.Sub(lot.UnitCost)))
			sellRemaining = sellRemaining.Sub(matched)
			lot.Remaining = lot.Remaining.Sub(matched)
			if lot.Remaining.IsZero() {
				cursor++
			}
		}

		if sellRemaining.IsPositive() {
			// 上游数据缺口：卖出量超过已知买入量，截断而不是记负持仓
			pnl.DataInconsistency = true
		}
	}

	costBasis := decimal.Zero
	for i := cursor; i < len(lots); i++ {
		pnl.RemainingQty = pnl.RemainingQty.Add(lots[i].Remaining)
		costBasis = costBasis.Add(lots[i].Remaining.Mul(lots[i].UnitCost))
	}

	if pnl.RemainingQty.IsPositive() {
		pnl.AvgBuyPrice = costBasis.Div(pnl.RemainingQty)
		if priceKnown {
			pnl.CurrentPrice = currentPrice
			pnl.Unrealized = currentPrice.Mul(pnl.RemainingQty).Sub(costBasis)
		} else {
			pnl.PriceUnavailable = true
		}
	}

	// Total 由构造保证等于两者之和，不独立重算
	pnl.Total = pnl.Realized.Add(pnl.Unrealized)
	return pnl
}

// BuildReport 取回每个代币的转账历史并匹配盈亏。
// 代币之间互相独立，可以并发；单个代币内部严格串行
func (l *PositionLedger) BuildReport(ctx context.Context, wallet string, tokens []string, now time.Time) (*model.PNLReport, error) {
	report := &model.PNLReport{
		Wallet:   wallet,
		PerToken: make(map[string]*model.TokenPNL, len(tokens)),
	}

	since := now.AddDate(0, 0, -l.cfg.Analyzer.LookbackDays).Unix()

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(l.cfg.Analyzer.WorkerNum)
	for _, token := range tokens {
		tokenAddr := token
		p.Go(func() {
			transfers, err := l.market.GetTransferHistory(ctx, l.cfg.Chain.Network, wallet, tokenAddr, since)
			if err != nil {
				// 取数失败的代币以打标的空结果入表，调用方能区分"无成交"和"没拿到数据"
				l.tl.Warn("transfer history unavailable, pnl reported empty for token",
					zap.String("wallet", wallet), zap.String("token", tokenAddr), zap.Error(err))
				monitor.SubAnalysisFailures.WithLabelValues("pnl_history").Inc()
				mu.Lock()
				report.PerToken[tokenAddr] = &model.TokenPNL{HistoryUnavailable: true}
				mu.Unlock()
				return
			}

			// 匹配统一用美元口径：有成交时美元估值用估值，缺失退回计价资产对价
			for i := range transfers {
				if transfers[i].ValueUSD.IsPositive() {
					transfers[i].ValueBase = transfers[i].ValueUSD
				}
			}

			currentPrice := decimal.Zero
			priceKnown := false
			if quote, err := l.market.GetPrice(ctx, l.cfg.Chain.Network, tokenAddr); err == nil && quote.PriceUSD.IsPositive() {
				currentPrice = quote.PriceUSD
				priceKnown = true
			}

			pnl := MatchFIFO(transfers, currentPrice, priceKnown)
			if pnl.DataInconsistency {
				monitor.PnlDataInconsistencies.WithLabelValues(l.cfg.Chain.Network).Inc()
			}

			mu.Lock()
			report.PerToken[tokenAddr] = pnl
			mu.Unlock()
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, pnl := range report.PerToken {
		report.TotalRealized = report.TotalRealized.Add(pnl.Realized)
		report.TotalUnrealized = report.TotalUnrealized.Add(pnl.Unrealized)
	}
	report.TotalPNL = report.TotalRealized.Add(report.TotalUnrealized)

	monitor.PnlRuns.WithLabelValues(l.cfg.Chain.Network).Inc()
	return report, nil
}
