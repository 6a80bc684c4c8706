package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"web3-risk/internal/analyzer/cache"
	"web3-risk/internal/analyzer/config"
	"web3-risk/internal/analyzer/monitor"
	"web3-risk/internal/analyzer/repository"
	"web3-risk/internal/analyzer/service"
	"web3-risk/pkg/logger"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

func main() {
	var (
		tokenAddr  string
		wallet     string
		tokensCSV  string
		timeoutSec int
	)
	flag.StringVar(&tokenAddr, "token", "", "token contract address to analyze")
	flag.StringVar(&wallet, "wallet", "", "wallet address for PNL report")
	flag.StringVar(&tokensCSV, "tokens", "", "comma separated token addresses for PNL report")
	flag.IntVar(&timeoutSec, "timeout", 60, "whole-analysis timeout in seconds")
	flag.Parse()

	if tokenAddr == "" && wallet == "" {
		flag.Usage()
		os.Exit(2)
	}

	// 初始化配置文件
	cfg := config.InitConfig()

	// 初始化 trace provider
	logger.InitTrace("web3-risk", "analyzer")
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLogger("analyzer")
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	// 启动配置热加载监听
	go config.WatchConfig(&cfg)

	repo := repository.New(cfg, tl)
	defer repo.Close()

	metrics := monitor.NewMetricsServer(cfg.Monitor)
	metrics.Run()
	defer metrics.Stop(ctx)

	cacheTTL := time.Duration(cfg.Analyzer.ReportCacheTTLMin) * time.Minute
	reportCache := cache.NewReportCache(tl, repo.GetMainRDB(), cacheTTL)
	engine := service.NewEngine(cfg, tl, repo.GetChainClient(), repo.GetMarketClient(), reportCache)

	// 整个分析作为一个可取消单元
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	now := time.Now()

	if tokenAddr != "" {
		report, err := engine.AnalyzeToken(ctx, tokenAddr, now)
		if err != nil {
			tl.Fatal("token analysis failed", zap.String("token", tokenAddr), zap.Error(err))
		}
		printJSON(tl, report)
	}

	if wallet != "" {
		var tokens []string
		for _, t := range strings.Split(tokensCSV, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
		if tokenAddr != "" && len(tokens) == 0 {
			tokens = []string{tokenAddr}
		}

		report, err := engine.AnalyzeWalletPNL(ctx, wallet, tokens, now)
		if err != nil {
			tl.Fatal("pnl report failed", zap.String("wallet", wallet), zap.Error(err))
		}
		printJSON(tl, report)
	}
}

func printJSON(tl *zap.Logger, v interface{}) {
	out, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		tl.Fatal("marshal report failed", zap.Error(err))
	}
	fmt.Println(string(out))
}
