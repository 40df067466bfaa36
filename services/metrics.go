// Copyright (c) 2024 The MODOS Project and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package services

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// serviceMetrics holds the Prometheus metrics exposed on /metrics.
type serviceMetrics struct {
	once sync.Once

	requests        *prometheus.CounterVec
	archives        prometheus.Gauge
	refreshDuration prometheus.Histogram
}

var svcMetrics serviceMetrics

func (m *serviceMetrics) init() {
	m.once.Do(func() {
		m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modos_requests_total",
			Help: "Requests served, by endpoint",
		}, []string{"endpoint"})
		m.archives = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "modos_catalog_archives",
			Help: "Number of archives in the served bucket",
		})
		m.refreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "modos_catalog_refresh_seconds",
			Help:    "Duration of catalog listing refreshes",
			Buckets: prometheus.DefBuckets,
		})
		prometheus.MustRegister(m.requests, m.archives, m.refreshDuration)
	})
}

func observeRequest(endpoint string) {
	svcMetrics.init()
	svcMetrics.requests.WithLabelValues(endpoint).Inc()
}

func observeRefresh(duration time.Duration, numArchives int) {
	svcMetrics.init()
	svcMetrics.refreshDuration.Observe(duration.Seconds())
	svcMetrics.archives.Set(float64(numArchives))
}
