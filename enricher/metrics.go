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

package enricher

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of processing individual records, used as "outcome" label values.
const (
	OutcomeEmitted      = "emitted"
	OutcomeNoID         = "no_id"
	OutcomeLookupFailed = "lookup_failed"
)

// enricherMetrics holds the Prometheus metrics of an Enricher. All methods are
// safe to call on a nil *enricherMetrics, doing nothing.
type enricherMetrics struct {
	batches prometheus.Counter
	records *prometheus.CounterVec
}

// newEnricherMetrics creates the enricher metrics and registers them.
func newEnricherMetrics(registerer prometheus.Registerer) (*enricherMetrics, error) {
	m := &enricherMetrics{
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecsfilter",
			Subsystem: "enricher",
			Name:      "batches_total",
			Help:      "Total number of record batches filtered.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecsfilter",
			Subsystem: "enricher",
			Name:      "records_total",
			Help:      "Total number of records processed, by outcome.",
		}, []string{"outcome"}),
	}
	for idx, c := range m.collectors() {
		if err := registerer.Register(c); err != nil {
			for _, registered := range m.collectors()[:idx] {
				registerer.Unregister(registered)
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *enricherMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.batches, m.records}
}

// unregister removes the enricher metrics from the specified registerer.
func (m *enricherMetrics) unregister(registerer prometheus.Registerer) {
	if m == nil {
		return
	}
	for _, c := range m.collectors() {
		registerer.Unregister(c)
	}
}

func (m *enricherMetrics) recordBatch() {
	if m != nil {
		m.batches.Inc()
	}
}

func (m *enricherMetrics) recordOutcome(outcome string) {
	if m != nil {
		m.records.WithLabelValues(outcome).Inc()
	}
}
