// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hybrid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enhanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "costcounsel",
		Subsystem: "hybrid",
		Name:      "enhance_duration_seconds",
		Help:      "End-to-end time for enhance-and-validate.",
		Buckets:   prometheus.DefBuckets,
	})

	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "costcounsel",
		Subsystem: "hybrid",
		Name:      "outcomes_total",
		Help:      "Enhancement outcomes: safe, unsafe, fallback, corrected.",
	}, []string{"outcome"})
)
