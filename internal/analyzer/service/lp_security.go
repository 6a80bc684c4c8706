package service

import (
	"context"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"
	"web3-risk/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LPSecurityVerifier 判定主池 LP 份额是否已销毁或锁仓
type LPSecurityVerifier struct {
	cfg   config.Config
	tl    *zap.Logger
	chain ChainGateway
}

func NewLPSecurityVerifier(cfg config.Config, logger *zap.Logger, chainGw ChainGateway) *LPSecurityVerifier {
	return &LPSecurityVerifier{cfg: cfg, tl: logger, chain: chainGw}
}

// Verify 只对非集中流动性池做判定。V3 的份额是 NFT，
// 报告为 unknown，绝不能默认当成已锁定
func (v *LPSecurityVerifier) Verify(ctx context.Context, pool *model.LiquidityPool) model.LPSecurityStatus {
	if pool == nil {
		return model.LPSecurityStatus{State: model.LPStateUnsecured}
	}
	if pool.IsV3 {
		return model.LPSecurityStatus{State: model.LPStateUnknown}
	}

	// V2 池自身就是 LP 份额代币
	supplyRaw, err := v.chain.TotalSupply(ctx, pool.Address)
	if err != nil {
		v.tl.Warn("lp token supply unavailable", zap.String("pool", pool.Address), zap.Error(err))
		return model.LPStatusDegraded()
	}
	supply := decimal.NewFromBigInt(supplyRaw, 0)
	if supply.IsZero() {
		return model.LPStatusDegraded()
	}

	burned := decimal.Zero
	for _, burnAddr := range v.cfg.Chain.BurnAddresses {
		bal, err := v.chain.BalanceOf(ctx, pool.Address, burnAddr)
		if err != nil {
			continue
		}
		burned = burned.Add(decimal.NewFromBigInt(bal, 0))
	}

	status := model.LPSecurityStatus{
		State:     model.LPStateUnsecured,
		BurnedPct: utils.ToPct(burned, supply),
	}
	if status.BurnedPct.GreaterThan(decimal.NewFromFloat(v.cfg.Analyzer.BurnedThresholdPct)) {
		status.State = model.LPStateBurned
		return status
	}

	for _, locker := range v.cfg.Chain.Lockers {
		bal, err := v.chain.BalanceOf(ctx, pool.Address, locker.Address)
		if err != nil {
			continue
		}
		lockedPct := utils.ToPct(decimal.NewFromBigInt(bal, 0), supply)
		if lockedPct.GreaterThan(decimal.NewFromFloat(v.cfg.Analyzer.LockedThresholdPct)) {
			platform := locker.Platform
			status.State = model.LPStateLocked
			status.LockedPct = lockedPct
			status.LockPlatform = &platform
			return status
		}
	}

	return status
}
