package service

import (
	"encoding/hex"
	"fmt"
	"strings"

	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RuleInput 规则的输入快照。规则只读它，互相独立
type RuleInput struct {
	BytecodeHex  string // 小写 hex，不带 0x
	Meta         *model.TokenMetadata
	OwnerPct     decimal.Decimal
	LiquidityUSD decimal.Decimal
}

// Rule 单条启发式规则，命中返回指标描述，未命中返回空串
type Rule struct {
	Name  string
	Check func(in RuleInput) string
}

// 字节码中的 4 字节函数选择器标记。出现对应选择器说明合约带有该类控制逻辑
var bytecodeMarkers = []struct {
	name     string
	selector string
	desc     string
}{
	{"blacklist", "f9f92be4", "blacklist(address) function present"},
	{"blacklist_check", "fe575a87", "isBlacklisted(address) function present"},
	{"trading_toggle", "8a8c523c", "enableTrading() trading switch present"},
	{"max_tx_limit", "7d1db4a5", "_maxTxAmount() transaction limiter present"},
	{"cooldown", "a9f1c5e8", "cooldown/delay mechanism present"},
	{"pausable", "5c975abb", "paused() pause control present"},
	{"pause_switch", "8456cb59", "pause() pause control present"},
}

// HoneypotDetector 基于规则的蜜罐启发式检测。
// 不做任何买卖模拟：未命中只说明没发现指标，不证明代币可以卖出
type HoneypotDetector struct {
	cfg   config.HoneypotConfig
	tl    *zap.Logger
	rules []Rule
}

func NewHoneypotDetector(cfg config.HoneypotConfig, logger *zap.Logger) *HoneypotDetector {
	d := &HoneypotDetector{cfg: cfg, tl: logger}
	d.rules = d.buildRules()
	return d
}

// buildRules 有序规则表。新增启发式只需要追加规则，不碰判定逻辑
func (d *HoneypotDetector) buildRules() []Rule {
	rules := make([]Rule, 0, len(bytecodeMarkers)+3)

	for _, m := range bytecodeMarkers {
		marker := m
		rules = append(rules, Rule{
			Name: marker.name,
			Check: func(in RuleInput) string {
				if in.BytecodeHex != "" && strings.Contains(in.BytecodeHex, marker.selector) {
					return marker.desc
				}
				return ""
			},
		})
	}

	rules = append(rules,
		Rule{
			Name: "owner_balance",
			Check: func(in RuleInput) string {
				if in.OwnerPct.GreaterThan(decimal.NewFromFloat(d.cfg.OwnerBalanceHighPct)) {
					return fmt.Sprintf("owner holds %s%% of supply", in.OwnerPct.StringFixed(2))
				}
				return ""
			},
		},
		Rule{
			Name: "unverified_source",
			Check: func(in RuleInput) string {
				if !in.Meta.Verified {
					return "contract source not verified"
				}
				return ""
			},
		},
		Rule{
			Name: "thin_liquidity",
			Check: func(in RuleInput) string {
				if in.LiquidityUSD.LessThan(decimal.NewFromFloat(d.cfg.ShortCircuitMinLiqUSD)) {
					return fmt.Sprintf("liquidity below $%.0f", d.cfg.ShortCircuitMinLiqUSD)
				}
				return ""
			},
		},
	)

	return rules
}

// Detect 纯函数式判定，输入都由调用方取好
func (d *HoneypotDetector) Detect(bytecode []byte, meta *model.TokenMetadata,
	ownerPct, liquidityUSD decimal.Decimal) model.HoneypotFinding {

	in := RuleInput{
		BytecodeHex:  strings.ToLower(hex.EncodeToString(bytecode)),
		Meta:         meta,
		OwnerPct:     ownerPct,
		LiquidityUSD: liquidityUSD,
	}

	extreme := decimal.NewFromFloat(d.cfg.OwnerBalanceExtremePct)

	// 短路：极端持仓 + 未验证 + 几乎没有流动性，直接判定，不再跑规则累计
	if ownerPct.GreaterThanOrEqual(extreme) && !meta.Verified &&
		liquidityUSD.LessThan(decimal.NewFromFloat(d.cfg.ShortCircuitMinLiqUSD)) {
		reason := "owner controls nearly the entire supply of an unverified, unfunded token"
		return model.HoneypotFinding{
			IsHoneypot: true,
			Indicators: []string{reason},
			SellTaxPct: decimal.NewFromFloat(d.cfg.ShortCircuitSellTaxPct),
			Reason:     &reason,
		}
	}

	var indicators []string
	triggered := make(map[string]bool)
	for _, rule := range d.rules {
		if detail := rule.Check(in); detail != "" {
			indicators = append(indicators, detail)
			triggered[rule.Name] = true
		}
	}

	finding := model.HoneypotFinding{Indicators: indicators}

	high := decimal.NewFromFloat(d.cfg.OwnerBalanceHighPct)
	switch {
	case len(indicators) >= d.cfg.IndicatorThreshold:
		finding.IsHoneypot = true
	case len(indicators) >= 1 && ownerPct.GreaterThan(high):
		finding.IsHoneypot = true
	case ownerPct.GreaterThan(extreme) && !meta.Verified:
		finding.IsHoneypot = true
	}

	if finding.IsHoneypot {
		reason := fmt.Sprintf("%d heuristic indicators triggered", len(indicators))
		finding.Reason = &reason

		// 交易开关/暂停类机制买卖两侧一起挡，税按全额估计；
		// 其余指标给不出税率，保持 0 表示无估计
		if triggered["trading_toggle"] || triggered["pausable"] || triggered["pause_switch"] {
			full := decimal.NewFromInt(100)
			finding.SellTaxPct = full
			finding.BuyTaxPct = full
		}
	}

	return finding
}
