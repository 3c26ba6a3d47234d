// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metacache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics holds the Prometheus metrics of a single cache. All methods are
// safe to call on a nil *cacheMetrics, doing nothing.
type cacheMetrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
	size        prometheus.Gauge
}

// newCacheMetrics creates the cache metrics and registers them.
func newCacheMetrics(registerer prometheus.Registerer, name string) (*cacheMetrics, error) {
	labels := prometheus.Labels{"cache": name}
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ecsfilter",
			Subsystem:   "cache",
			Name:        "hits_total",
			ConstLabels: labels,
			Help:        "Total number of cache hits.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ecsfilter",
			Subsystem:   "cache",
			Name:        "misses_total",
			ConstLabels: labels,
			Help:        "Total number of cache misses.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ecsfilter",
			Subsystem:   "cache",
			Name:        "evictions_total",
			ConstLabels: labels,
			Help:        "Total number of entries evicted due to the cache size limit.",
		}),
		expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ecsfilter",
			Subsystem:   "cache",
			Name:        "expirations_total",
			ConstLabels: labels,
			Help:        "Total number of entries removed after their time-to-live.",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ecsfilter",
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: labels,
			Help:        "Current number of cache entries.",
		}),
	}
	collectors := []prometheus.Collector{m.hits, m.misses, m.evictions, m.expirations, m.size}
	for idx, c := range collectors {
		if err := registerer.Register(c); err != nil {
			for _, registered := range collectors[:idx] {
				registerer.Unregister(registered)
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *cacheMetrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) recordEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *cacheMetrics) recordExpiration() {
	if m != nil {
		m.expirations.Inc()
	}
}

func (m *cacheMetrics) updateSize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}
