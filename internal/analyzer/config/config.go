package config

import (
	"fmt"

	"web3-risk/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config 定义整个配置的结构
type Config struct {
	Log                 LogConfig      `mapstructure:"log"`
	Redis               RedisConfig    `mapstructure:"redis"`
	Monitor             MonitorConfig  `mapstructure:"monitor"`
	Market              MarketConfig   `mapstructure:"market"`
	Chain               ChainConfig    `mapstructure:"chain"`
	Analyzer            AnalyzerConfig `mapstructure:"analyzer"`
	Honeypot            HoneypotConfig `mapstructure:"honeypot"`
	EvmClientRawUrl     string         `mapstructure:"evm_client_rawurl"`
	EvmClientTimeoutSec int            `mapstructure:"evm_client_timeout_sec"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

// MarketConfig 行情/历史数据网关配置
type MarketConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	RateLimit int    `mapstructure:"rate_limit"`
	Timeout   int    `mapstructure:"timeout"`
}

// QuoteAsset 报价资产（wrapped native / 稳定币）
type QuoteAsset struct {
	Symbol  string `mapstructure:"symbol"`
	Address string `mapstructure:"address"`
}

// Locker 已知锁仓平台合约
type Locker struct {
	Platform string `mapstructure:"platform"`
	Address  string `mapstructure:"address"`
}

// ChainConfig 链上常量：工厂、报价资产、锁仓与销毁地址
type ChainConfig struct {
	Network       string       `mapstructure:"network"`
	QuoteAssets   []QuoteAsset `mapstructure:"quote_assets"`
	FactoryV2     string       `mapstructure:"factory_v2"`
	FactoryV3     string       `mapstructure:"factory_v3"`
	V3FeeTiers    []int64      `mapstructure:"v3_fee_tiers"`
	Lockers       []Locker     `mapstructure:"lockers"`
	BurnAddresses []string     `mapstructure:"burn_addresses"`
}

// AnalyzerConfig 引擎参数
type AnalyzerConfig struct {
	WorkerNum          int     `mapstructure:"worker_num"`
	TopHolderCount     int     `mapstructure:"top_holder_count"`
	EnrichMinPct       float64 `mapstructure:"enrich_min_pct"`
	LookbackDays       int     `mapstructure:"lookback_days"`
	DiamondHandsDays   int     `mapstructure:"diamond_hands_days"`
	WhaleNetWorthUSD   float64 `mapstructure:"whale_net_worth_usd"`
	WhaleHoldingUSD    float64 `mapstructure:"whale_holding_usd"`
	HugeTransferUSD    float64 `mapstructure:"huge_transfer_usd"`
	ReportCacheTTLMin  int     `mapstructure:"report_cache_ttl_min"`
	BurnedThresholdPct float64 `mapstructure:"burned_threshold_pct"`
	LockedThresholdPct float64 `mapstructure:"locked_threshold_pct"`
}

// HoneypotConfig 蜜罐启发式阈值。这些阈值来自经验值而非标定模型，保持可调
type HoneypotConfig struct {
	IndicatorThreshold     int     `mapstructure:"indicator_threshold"`
	OwnerBalanceHighPct    float64 `mapstructure:"owner_balance_high_pct"`
	OwnerBalanceExtremePct float64 `mapstructure:"owner_balance_extreme_pct"`
	ShortCircuitMinLiqUSD  float64 `mapstructure:"short_circuit_min_liq_usd"`
	ShortCircuitSellTaxPct float64 `mapstructure:"short_circuit_sell_tax_pct"`
}

func InitConfig() Config {
	var config Config

	viper.SetConfigName("config.analyzer")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config/")

	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	if err := mapstructure.Decode(viper.AllSettings(), &config); err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}

	return config
}

func WatchConfig(config *Config) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig := InitConfig()
		*config = newConfig
		logger.SetLogLevel(config.Log.Level)
	})
}
