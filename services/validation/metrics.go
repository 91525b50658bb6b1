// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "costcounsel",
		Subsystem: "validation",
		Name:      "duration_seconds",
		Help:      "Time spent validating one explanation.",
		Buckets:   prometheus.DefBuckets,
	})

	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "costcounsel",
		Subsystem: "validation",
		Name:      "reports_total",
		Help:      "Validation reports by final status.",
	}, []string{"status"})

	issuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "costcounsel",
		Subsystem: "validation",
		Name:      "issues_total",
		Help:      "Validation issues by type and severity.",
	}, []string{"type", "severity"})

	correctionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "costcounsel",
		Subsystem: "validation",
		Name:      "correction_attempts_total",
		Help:      "Bounded correction attempts by outcome.",
	}, []string{"outcome"})
)
