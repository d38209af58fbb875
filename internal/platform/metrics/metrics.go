// Package metrics は Prometheus による氏名同期・RPC の計測を提供します。
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "hrnames"

// Registry はアプリケーションのメトリクスを保持します。
type Registry struct {
	registry    *prometheus.Registry
	nameSyncs   *prometheus.CounterVec
	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
}

// New は専用レジストリにメトリクスを登録して返します。
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		registry: reg,
		nameSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "name_sync_records_total",
			Help:      "Employee records whose name was written, by sync path.",
		}, []string{"path"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Handled gRPC requests by method and status code.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		r.nameSyncs,
		r.rpcRequests,
		r.rpcDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// RecordNameSync は同期経路ごとに書き込んだ社員数を加算します。
func (r *Registry) RecordNameSync(path string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.nameSyncs.WithLabelValues(path).Add(float64(n))
}

// UnaryServerInterceptor は RPC の件数とレイテンシを記録します。
func (r *Registry) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		r.rpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		r.rpcDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// Handler は /metrics 用の HTTP ハンドラを返します。
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer はテストや外部エクスポート用にレジストリを返します。
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Serve は addr で /metrics を公開し、ctx がキャンセルされると停止します。
func (r *Registry) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
