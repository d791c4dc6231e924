package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/codewandler/ttlcache-go/adapters/prometheus"
	"github.com/codewandler/ttlcache-go/core/cache"
)

// === Config ===

var (
	N           = getEnvInt("N", 100_000)
	batchSize   = getEnvInt("B", 10_000)
	maxEntries  = getEnvInt("MAX", 50_000)
	ttlMs       = getEnvInt("TTL_MS", 2_000)
	metricsAddr = getEnv("METRICS_ADDR", "")
	logLevel    = getEnv("LOG_LEVEL", "info")
	waitExpiry  = getEnvBool("WAIT_EXPIRY", true)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	if v == "1" || strings.ToLower(v) == "true" {
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

type counters struct {
	stale, evict, set, del atomic.Int64
}

func (c *counters) dispose(_ []byte, _ string, r cache.Reason) {
	switch r {
	case cache.ReasonStale:
		c.stale.Add(1)
	case cache.ReasonEvict:
		c.evict.Add(1)
	case cache.ReasonSet:
		c.set.Add(1)
	case cache.ReasonDelete:
		c.del.Add(1)
	}
}

func main() {
	var (
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLevel(logLevel),
		}))
		reg     = prometheus.NewRegistry()
		counted = &counters{}
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		srv := startMetrics(log, reg, metricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	c, err := cache.NewTTL[string, []byte](
		cacheOptions(log, promadapter.NewCacheMetrics(reg), ttlMs, maxEntries, counted.dispose)...,
	)
	checkErr(err)

	fmt.Printf("     entries: %d\n", N)
	fmt.Printf("         max: %d\n", maxEntries)
	fmt.Printf("         ttl: %d ms\n", ttlMs)

	// === START ===

	log.Info("==================================")
	log.Info("Starting ...")

	startAt := time.Now()
	lastTime := startAt
	keys := make([]string, 0, batchSize)

	for i := 0; i < N; i++ {
		if ctx.Err() != nil {
			break
		}

		key := gonanoid.Must(12)
		// spread expirations so that purges hit many buckets
		ttl := time.Duration(ttlMs+i%100) * time.Millisecond
		checkErr(c.Set(key, []byte(key), cache.WithTTL(ttl)))
		keys = append(keys, key)

		if i == 0 || i%batchSize != 0 {
			continue
		}

		hits := 0
		for _, k := range keys {
			if _, ok := c.Get(k); ok {
				hits++
			}
		}
		keys = keys[:0]

		mu := getMemUsage()
		n := time.Now()
		took := n.Sub(lastTime)
		fmt.Printf(" | %6d sets | %6d hits | %6d ms | %8d sets/s | %6d entries | (%d / %d) MiB mem (sys) |\n",
			batchSize, hits, took.Milliseconds(), int(float64(batchSize)/took.Seconds()), c.Len(), mu.Alloc/1024/1024, mu.Sys/1024/1024)
		lastTime = n
	}

	if waitExpiry {
		log.Info("waiting for entries to expire", slog.Int("entries", c.Len()))
		waitEmpty(ctx, c)
	}

	// === stats ===
	println("")
	println("==========================================")

	took := time.Since(startAt)
	runtime.GC()

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("      entries: %d\n", c.Len())
	fmt.Printf("      evicted: %d\n", counted.evict.Load())
	fmt.Printf("        stale: %d\n", counted.stale.Load())
	fmt.Printf("  avg. sets/s: %d\n", int(float64(N)/took.Seconds()))
}

// cacheOptions builds the demo cache config. A max of 0 or less runs the
// cache unbounded.
func cacheOptions(log *slog.Logger, m cache.Metrics, ttlMs, maxEntries int, dispose func([]byte, string, cache.Reason)) []cache.Option {
	opts := []cache.Option{
		cache.WithName("demo"),
		cache.WithLogger(log),
		cache.WithMetrics(m),
		cache.WithTTL(time.Duration(ttlMs) * time.Millisecond),
		cache.WithDispose(dispose),
	}
	if maxEntries > 0 {
		opts = append(opts, cache.WithMax(maxEntries))
	}
	return opts
}

func waitEmpty(ctx context.Context, c *cache.TTL[string, []byte]) {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for c.Len() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func startMetrics(log *slog.Logger, reg *prometheus.Registry, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	log.Info("serving metrics", slog.String("addr", addr))
	return srv
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
