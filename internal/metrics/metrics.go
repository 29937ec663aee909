// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやハンドラー層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(method, route string, duration time.Duration)
	RecordAuthRejection()
	RecordStoreFailure(operation string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	authRejections prometheus.Counter
	storeFailures  *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdeck_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskdeck_request_latency_seconds",
			Help:    "リクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskdeck_auth_rejections_total",
			Help: "認証拒否（401）の合計数",
		}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdeck_store_failures_total",
			Help: "データストア操作失敗の合計数",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.authRejections,
		c.storeFailures,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(method, route string, duration time.Duration) {
	c.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthRejection は認証拒否を記録する。
func (c *Collector) RecordAuthRejection() {
	c.authRejections.Inc()
}

// RecordStoreFailure はデータストア操作の失敗を記録する。
func (c *Collector) RecordStoreFailure(operation string) {
	c.storeFailures.WithLabelValues(operation).Inc()
}

// statusWriter はhttp.ResponseWriterをラップし、ステータスコードを取り出す。
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.statusCode == 0 {
		sw.statusCode = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.statusCode == 0 {
		sw.statusCode = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

// NewMetricsMiddleware はレスポンスのステータスとレイテンシを記録する
// ミドルウェアを返す。ルートラベルにはパスパターンではなく
// メソッドとパスの先頭セグメントを使い、ラベルの爆発を避ける。
func NewMetricsMiddleware(collector MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			status := sw.statusCode
			if status == 0 {
				status = http.StatusOK
			}
			collector.RecordHTTPStatus(status)
			collector.RecordRequestLatency(r.Method, routeLabel(r.URL.Path), time.Since(start))
			if status == http.StatusUnauthorized {
				collector.RecordAuthRejection()
			}
		})
	}
}

// routeLabel はパスの先頭セグメントをメトリクスラベルに変換する。
func routeLabel(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	rest := path[1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return "/" + rest[:i]
		}
	}
	return "/" + rest
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
