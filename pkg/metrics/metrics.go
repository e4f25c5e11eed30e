// Copyright 2025 The CoReason Authors.
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

// Package metrics exposes Prometheus instrumentation for the composition
// and compilation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for CompileResult, one per failure family plus success.
// InternalError covers failures outside the three families, such as a
// sandbox root that cannot be opened at all.
const (
	ResultSuccess          = "success"
	ResultSecurityError    = "security_error"
	ResultCompositionError = "composition_error"
	ResultCompilationError = "compilation_error"
	ResultCanceled         = "canceled"
	ResultInternalError    = "internal_error"
)

var (
	// CompileDuration tracks end-to-end compose+compile latency in seconds.
	CompileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "manifest_compile_duration_seconds",
			Help:    "Manifest compose and compile duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-4, 2, 14), // 100us to ~1.6s
		},
		[]string{"mode"},
	)

	// CompileResult counts compose+compile outcomes by mode and result family.
	CompileResult = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manifest_compile_result_total",
			Help: "Count of manifest compilations by mode and result",
		},
		[]string{"mode", "result"},
	)

	// ComposedFiles tracks how many files each composition resolved.
	ComposedFiles = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "manifest_composed_files",
			Help:    "Number of files resolved per composed manifest",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(CompileDuration)
	prometheus.MustRegister(CompileResult)
	prometheus.MustRegister(ComposedFiles)
}

// RecordCompileLatency records one pipeline run's latency for a mode.
func RecordCompileLatency(mode string, seconds float64) {
	CompileDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordCompileResult increments the outcome counter for a mode.
func RecordCompileResult(mode, result string) {
	CompileResult.WithLabelValues(mode, result).Inc()
}
