// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability exposes Prometheus metrics for the visualize
// service and the gin middleware that records them.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service counters so tests can use an isolated
// registry instead of the process-global default.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	chartsGenerated *prometheus.CounterVec
	cacheHits       prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qvt_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qvt_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		chartsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qvt_charts_generated_total",
			Help: "Generated chart envelopes by chart key.",
		}, []string{"chart_key"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qvt_chart_cache_hits_total",
			Help: "Chart requests served from the result cache.",
		}),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.chartsGenerated, m.cacheHits)
	return m
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// ObserveChart counts one generated chart envelope.
func (m *Metrics) ObserveChart(chartKey string) {
	m.chartsGenerated.WithLabelValues(chartKey).Inc()
}

// ObserveCacheHit counts one cache-served response.
func (m *Metrics) ObserveCacheHit() {
	m.cacheHits.Inc()
}
