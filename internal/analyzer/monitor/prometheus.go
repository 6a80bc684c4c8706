package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// AnalysisRuns 风险分析相关
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_analysis_runs_total",
			Help: "Total number of token risk analyses started.",
		},
		[]string{"network"},
	)
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "risk_analysis_duration_seconds",
			Help:    "Time taken to produce a full risk report.",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"network"},
	)
	SubAnalysisFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_sub_analysis_failures_total",
			Help: "Total number of sub-analyses that degraded to a neutral result.",
		},
		[]string{"component"},
	)

	// ReportCacheHits 缓存指标
	ReportCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_report_cache_hits_total",
			Help: "Total number of report cache hits.",
		},
		[]string{"kind"},
	)
	ReportCacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_report_cache_misses_total",
			Help: "Total number of report cache misses.",
		},
		[]string{"kind"},
	)

	// PnlRuns 持仓盈亏指标
	PnlRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnl_report_runs_total",
			Help: "Total number of wallet PNL reports built.",
		},
		[]string{"network"},
	)
	PnlDataInconsistencies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnl_data_inconsistencies_total",
			Help: "Total number of tokens whose sells exceeded matched buy lots.",
		},
		[]string{"network"},
	)
)

func init() {
	prometheus.MustRegister(
		// 分析指标
		AnalysisRuns,
		AnalysisDuration,
		SubAnalysisFailures,

		// 缓存指标
		ReportCacheHits,
		ReportCacheMisses,

		// PNL指标
		PnlRuns,
		PnlDataInconsistencies,
	)
}
