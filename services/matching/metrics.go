// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "costcounsel",
		Subsystem: "matching",
		Name:      "duration_seconds",
		Help:      "Time spent scoring one fact set against the rule set.",
		Buckets:   prometheus.DefBuckets,
	})

	matchOperations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "costcounsel",
		Subsystem: "matching",
		Name:      "operations_total",
		Help:      "Number of match operations performed.",
	})

	nodesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "costcounsel",
		Subsystem: "matching",
		Name:      "nodes_evaluated_total",
		Help:      "Number of rule nodes scored across all match operations.",
	})

	matchesReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "costcounsel",
		Subsystem: "matching",
		Name:      "results_returned",
		Help:      "Matches surviving the threshold filter per operation.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)
