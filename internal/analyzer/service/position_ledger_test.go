package service

import (
	"context"
	"testing"
	"time"

	"web3-risk/internal/analyzer/model"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func buy(amount, valueBase string, ts int64) model.Transfer {
	return model.Transfer{Direction: model.DirectionBuy, Amount: d(amount), ValueBase: d(valueBase), Timestamp: ts}
}

func sell(amount, valueBase string, ts int64) model.Transfer {
	return model.Transfer{Direction: model.DirectionSell, Amount: d(amount), ValueBase: d(valueBase), Timestamp: ts}
}

func TestMatchFIFOBasic(t *testing.T) {
	// 100 @ 0.01, 50 @ 0.02, 卖出 120 @ 0.03
	transfers := []model.Transfer{
		buy("100", "1", 1000),
		buy("50", "1", 2000),
		sell("120", "3.6", 3000),
	}

	pnl := MatchFIFO(transfers, d("0.025"), true)

	if !pnl.Realized.Equal(d("2.2")) {
		t.Errorf("realized = %s, want 2.2", pnl.Realized)
	}
	if !pnl.RemainingQty.Equal(d("30")) {
		t.Errorf("remaining qty = %s, want 30", pnl.RemainingQty)
	}
	if !pnl.AvgBuyPrice.Equal(d("0.02")) {
		t.Errorf("avg buy price = %s, want 0.02", pnl.AvgBuyPrice)
	}
	if !pnl.Unrealized.Equal(d("0.15")) {
		t.Errorf("unrealized = %s, want 0.15", pnl.Unrealized)
	}
	if !pnl.Total.Equal(d("2.35")) {
		t.Errorf("total = %s, want 2.35", pnl.Total)
	}
	if pnl.DataInconsistency || pnl.PriceUnavailable {
		t.Errorf("unexpected flags: inconsistency=%v priceUnavailable=%v", pnl.DataInconsistency, pnl.PriceUnavailable)
	}
}

func TestMatchFIFOOversell(t *testing.T) {
	transfers := []model.Transfer{
		buy("10", "1", 1000),  // 0.1/unit
		sell("15", "3", 2000), // 0.2/unit，超过累计买入
	}

	pnl := MatchFIFO(transfers, d("0.2"), true)

	if !pnl.DataInconsistency {
		t.Error("oversell must set DataInconsistency")
	}
	if !pnl.RemainingQty.IsZero() {
		t.Errorf("remaining qty = %s, want 0 (never negative)", pnl.RemainingQty)
	}
	if !pnl.Realized.Equal(d("1")) {
		t.Errorf("realized = %s, want 1 (clamped to available lots)", pnl.Realized)
	}
	if !pnl.Total.Equal(pnl.Realized) {
		t.Errorf("total = %s, want realized %s when nothing remains", pnl.Total, pnl.Realized)
	}
}

func TestMatchFIFOPriceUnavailable(t *testing.T) {
	transfers := []model.Transfer{buy("10", "1", 1000)}

	pnl := MatchFIFO(transfers, decimal.Zero, false)

	if !pnl.PriceUnavailable {
		t.Error("unknown current price must set PriceUnavailable")
	}
	if !pnl.Unrealized.IsZero() {
		t.Errorf("unrealized = %s, want 0 when price unavailable", pnl.Unrealized)
	}
	if !pnl.Total.Equal(pnl.Realized) {
		t.Errorf("total = %s, want %s", pnl.Total, pnl.Realized)
	}
}

func TestMatchFIFOTotalInvariant(t *testing.T) {
	cases := [][]model.Transfer{
		{},
		{buy("100", "1", 1), sell("40", "2", 2), buy("20", "1", 3), sell("80", "4", 4)},
		{sell("10", "1", 1)}, // 没有任何买入的纯卖出
		{buy("3", "1", 1), buy("7", "2", 2), sell("5", "10", 3)},
	}

	for i, transfers := range cases {
		pnl := MatchFIFO(transfers, d("0.5"), true)
		if !pnl.Total.Equal(pnl.Realized.Add(pnl.Unrealized)) {
			t.Errorf("case %d: total %s != realized %s + unrealized %s", i, pnl.Total, pnl.Realized, pnl.Unrealized)
		}
		if pnl.RemainingQty.IsNegative() {
			t.Errorf("case %d: remaining qty %s is negative", i, pnl.RemainingQty)
		}
	}
}

func TestBuildReport(t *testing.T) {
	wallet := "0x1111111111111111111111111111111111111111"
	token := "0x2222222222222222222222222222222222222222"

	market := &fakeMarket{
		price: d("0.02"),
		transfers: map[string][]model.Transfer{
			lower(wallet): {
				// ValueBase 是计价资产口径，ValueUSD 存在时必须覆盖它
				{Direction: model.DirectionBuy, Amount: d("100"), ValueBase: d("999"), ValueUSD: d("1"), Timestamp: 1000},
			},
		},
	}
	ledger := NewPositionLedger(testConfig(), testLogger(), market)

	report, err := ledger.BuildReport(context.Background(), wallet, []string{token}, time.Unix(1_700_000_000, 0))
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}

	pnl, ok := report.PerToken[token]
	if !ok {
		t.Fatalf("token %s missing from report", token)
	}
	if !pnl.AvgBuyPrice.Equal(d("0.01")) {
		t.Errorf("avg buy price = %s, want 0.01 (USD-normalized)", pnl.AvgBuyPrice)
	}
	if !pnl.Unrealized.Equal(d("1")) {
		t.Errorf("unrealized = %s, want 1", pnl.Unrealized)
	}
	if !report.TotalPNL.Equal(report.TotalRealized.Add(report.TotalUnrealized)) {
		t.Errorf("report total %s != realized %s + unrealized %s",
			report.TotalPNL, report.TotalRealized, report.TotalUnrealized)
	}
}

func TestBuildReportHistoryUnavailable(t *testing.T) {
	token := "0x2222222222222222222222222222222222222222"

	market := &fakeMarket{transferErr: errFakeMissing, price: d("1")}
	ledger := NewPositionLedger(testConfig(), testLogger(), market)

	report, err := ledger.BuildReport(context.Background(), "0x1111111111111111111111111111111111111111",
		[]string{token}, time.Unix(1_700_000_000, 0))
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}

	pnl, ok := report.PerToken[token]
	if !ok {
		t.Fatal("failed token must still appear in the report")
	}
	if !pnl.HistoryUnavailable {
		t.Error("HistoryUnavailable not set on fetch failure")
	}
	if !pnl.Total.IsZero() || !report.TotalPNL.IsZero() {
		t.Errorf("empty entry must not move totals: token=%s report=%s", pnl.Total, report.TotalPNL)
	}
}

func TestBuildReportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ledger := NewPositionLedger(testConfig(), testLogger(), &fakeMarket{price: d("1")})
	if _, err := ledger.BuildReport(ctx, "0x1", []string{"0x2"}, time.Now()); err == nil {
		t.Error("cancelled context must not return a partial report")
	}
}
