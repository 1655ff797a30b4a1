// Copyright 2025 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"math"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Label constants.
const (
	LblResult = "result"

	// LblFull marks extractions where the tuple domain carries the whole
	// predicate and no residual filtering is needed.
	LblFull = "full"
	// LblPartial marks extractions that produced a constraining tuple domain
	// together with a residual expression.
	LblPartial = "partial"
	// LblNone marks extractions where nothing could be pushed into the tuple
	// domain.
	LblNone = "none"
)

// Translator metrics.
var (
	ExtractionCounter     *prometheus.CounterVec
	ReconstructionCounter prometheus.Counter
)

var initOnce sync.Once

func init() {
	InitMetrics()
}

// InitMetrics initializes the translator metrics vars. It is safe to call
// more than once.
func InitMetrics() {
	initOnce.Do(func() {
		ExtractionCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ranger",
				Subsystem: "translator",
				Name:      "extraction_total",
				Help:      "Counter of predicate to tuple domain extractions by completeness.",
			}, []string{LblResult})

		ReconstructionCounter = prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ranger",
				Subsystem: "translator",
				Name:      "reconstruction_total",
				Help:      "Counter of predicates reconstructed from tuple domains.",
			})
	})
}

// RegisterMetrics registers the translator metrics.
func RegisterMetrics(registry *prometheus.Registry) {
	registry.MustRegister(ExtractionCounter)
	registry.MustRegister(ReconstructionCounter)
}

// ReadCounter reports the current value of the counter.
func ReadCounter(counter prometheus.Counter) float64 {
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		return math.NaN()
	}
	return metric.Counter.GetValue()
}
