package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"web3-risk/internal/analyzer/model"

	"github.com/shopspring/decimal"
)

func holderMeta() *model.TokenMetadata {
	return &model.TokenMetadata{
		Address:     "0x6666666666666666666666666666666666666666",
		Decimals:    0,
		TotalSupply: decimal.NewFromInt(1000),
	}
}

func TestAnalyzeConcentration(t *testing.T) {
	analyzer := NewHolderAnalyzer(testConfig(), testLogger(), &fakeMarket{})
	meta := holderMeta()

	lpAddr := "0x7777777777777777777777777777777777777777"
	lpSet := NewLPSet()
	lpSet.Add(lpAddr)

	// LP 占 40%，9 个普通地址各占 1%
	raw := []model.HolderBalance{{Address: lpAddr, BalanceRaw: decimal.NewFromInt(400), IsContract: true}}
	for i := 0; i < 9; i++ {
		raw = append(raw, model.HolderBalance{
			Address:    fmt.Sprintf("0x%040d", i+1),
			BalanceRaw: decimal.NewFromInt(10),
		})
	}

	analysis := analyzer.Analyze(context.Background(), meta, raw, lpSet, 0, time.Unix(1_700_000_000, 0))

	if !analysis.Top10Pct.Equal(decimal.NewFromInt(49)) {
		t.Errorf("top10 pct = %s, want 49", analysis.Top10Pct)
	}
	if !analysis.Top10ExclLPPct.Equal(decimal.NewFromInt(9)) {
		t.Errorf("top10 excl-LP pct = %s, want 9", analysis.Top10ExclLPPct)
	}
	if analysis.Top10Pct.GreaterThan(decimal.NewFromInt(100)) {
		t.Errorf("top10 pct = %s, exceeds 100", analysis.Top10Pct)
	}
	if containsFactor(analysis.RiskFactors, "concentration") {
		t.Errorf("LP-dominated distribution must not raise a concentration factor, got %v", analysis.RiskFactors)
	}
	if containsFactor(analysis.RiskFactors, "No liquidity pool found among top holders") {
		t.Errorf("LP is present among holders, got %v", analysis.RiskFactors)
	}

	// 池持有人必须排最前
	if analysis.Top10[0].Role != model.RoleLiquidity {
		t.Errorf("first holder role = %s, want %s", analysis.Top10[0].Role, model.RoleLiquidity)
	}
	for _, h := range analysis.Top10[1:] {
		if h.Role == model.RoleLiquidity {
			t.Errorf("liquidity holder %s not sorted first", h.Address)
		}
	}
}

func TestAnalyzeCreatorAndOwnerRoles(t *testing.T) {
	analyzer := NewHolderAnalyzer(testConfig(), testLogger(), &fakeMarket{})
	meta := holderMeta()

	creator := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"
	owner := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa2"
	meta.CreatorAddress = &creator
	meta.OwnerAddress = &owner

	raw := []model.HolderBalance{
		{Address: creator, BalanceRaw: decimal.NewFromInt(100)},
		{Address: owner, BalanceRaw: decimal.NewFromInt(50)},
		{Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa3", BalanceRaw: decimal.NewFromInt(10)},
	}
	analysis := analyzer.Analyze(context.Background(), meta, raw, NewLPSet(), 0, time.Unix(1_700_000_000, 0))

	roles := map[string]string{}
	for _, h := range analysis.Top10 {
		roles[h.Address] = h.Role
	}
	if roles[creator] != model.RoleCreator {
		t.Errorf("creator role = %s, want %s", roles[creator], model.RoleCreator)
	}
	if roles[owner] != model.RoleOwner {
		t.Errorf("owner role = %s, want %s", roles[owner], model.RoleOwner)
	}
	if roles["0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa3"] != model.RoleRegular {
		t.Errorf("regular role = %s, want %s", roles["0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa3"], model.RoleRegular)
	}
}

func TestAnalyzeEmptyHolders(t *testing.T) {
	analyzer := NewHolderAnalyzer(testConfig(), testLogger(), &fakeMarket{})

	analysis := analyzer.Analyze(context.Background(), holderMeta(), nil, NewLPSet(), 0, time.Now())

	if !containsFactor(analysis.RiskFactors, "Could not retrieve holder data") {
		t.Errorf("missing degraded-data factor, got %v", analysis.RiskFactors)
	}
	if analysis.TotalHolders != 0 || len(analysis.Top10) != 0 {
		t.Errorf("empty input produced holders: total=%d top=%d", analysis.TotalHolders, len(analysis.Top10))
	}
}

func TestAnalyzeSingleLargeHolder(t *testing.T) {
	analyzer := NewHolderAnalyzer(testConfig(), testLogger(), &fakeMarket{})

	raw := []model.HolderBalance{
		{Address: "0x8888888888888888888888888888888888888888", BalanceRaw: decimal.NewFromInt(350)},
	}
	analysis := analyzer.Analyze(context.Background(), holderMeta(), raw, NewLPSet(), 0, time.Unix(1_700_000_000, 0))

	if !containsFactor(analysis.RiskFactors, "controls 35.00% of supply") {
		t.Errorf("missing single-holder factor, got %v", analysis.RiskFactors)
	}
	if !containsFactor(analysis.RiskFactors, "No liquidity pool found among top holders") {
		t.Errorf("missing no-LP factor, got %v", analysis.RiskFactors)
	}
}

func TestAnalyzeExternalHolderCount(t *testing.T) {
	analyzer := NewHolderAnalyzer(testConfig(), testLogger(), &fakeMarket{})

	raw := []model.HolderBalance{
		{Address: "0x8888888888888888888888888888888888888888", BalanceRaw: decimal.NewFromInt(10)},
	}

	// 外部计数源的总数覆盖本地列表长度
	analysis := analyzer.Analyze(context.Background(), holderMeta(), raw, NewLPSet(), 1234, time.Now())
	if analysis.TotalHolders != 1234 {
		t.Errorf("total holders = %d, want external count 1234", analysis.TotalHolders)
	}

	// 外部计数不可用（0）时退回列表长度
	analysis = analyzer.Analyze(context.Background(), holderMeta(), raw, NewLPSet(), 0, time.Now())
	if analysis.TotalHolders != 1 {
		t.Errorf("total holders = %d, want fallback to list length", analysis.TotalHolders)
	}
}

func TestAnalyzeDiamondHands(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1_700_000_000, 0)
	meta := holderMeta()
	price := decimal.NewFromInt(1)
	meta.PriceUsd = &price

	quiet := "0x9999999999999999999999999999999999999991"
	trader := "0x9999999999999999999999999999999999999992"

	market := &fakeMarket{
		transfers: map[string][]model.Transfer{
			// 回看窗口内没有任何记录：按定义 diamond hands
			lower(quiet): {},
			// 两天前才买入：不是 diamond hands
			lower(trader): {
				{Direction: model.DirectionBuy, Amount: decimal.NewFromInt(50), ValueUSD: decimal.NewFromInt(50), Timestamp: now.AddDate(0, 0, -2).Unix()},
			},
		},
	}
	analyzer := NewHolderAnalyzer(cfg, testLogger(), market)

	raw := []model.HolderBalance{
		{Address: quiet, BalanceRaw: decimal.NewFromInt(50)},
		{Address: trader, BalanceRaw: decimal.NewFromInt(50)},
	}
	analysis := analyzer.Analyze(context.Background(), meta, raw, NewLPSet(), 0, now)

	if analysis.DiamondHandCount != 1 {
		t.Errorf("diamond hand count = %d, want 1", analysis.DiamondHandCount)
	}
	for _, h := range analysis.Top10 {
		switch h.Address {
		case quiet:
			if !h.IsDiamondHands || h.HoldingDays != cfg.Analyzer.LookbackDays {
				t.Errorf("quiet holder: diamond=%v days=%d, want full lookback window", h.IsDiamondHands, h.HoldingDays)
			}
		case trader:
			if h.IsDiamondHands || h.HoldingDays != 2 {
				t.Errorf("recent buyer: diamond=%v days=%d, want 2 days", h.IsDiamondHands, h.HoldingDays)
			}
		}
	}
}

func TestAnalyzeWhaleFlag(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	meta := holderMeta()

	whale := "0x9999999999999999999999999999999999999993"
	market := &fakeMarket{
		netWorth: map[string]decimal.Decimal{
			lower(whale): decimal.NewFromInt(5_000_000),
		},
		transfers: map[string][]model.Transfer{},
	}
	analyzer := NewHolderAnalyzer(testConfig(), testLogger(), market)

	raw := []model.HolderBalance{{Address: whale, BalanceRaw: decimal.NewFromInt(50)}}
	analysis := analyzer.Analyze(context.Background(), meta, raw, NewLPSet(), 0, now)

	if !analysis.Top10[0].IsWhale {
		t.Error("holder above net worth threshold not flagged as whale")
	}
	if !analysis.Top10[0].WhaleValueUSD.Equal(decimal.NewFromInt(5_000_000)) {
		t.Errorf("whale value = %s, want 5000000", analysis.Top10[0].WhaleValueUSD)
	}
}
