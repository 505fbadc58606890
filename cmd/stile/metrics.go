package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sweepCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatehouse_sweep_runs",
	Help: "Number of scheduled account sweep runs",
}, []string{"outcome"})

var sweptAccountCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatehouse_sweep_accounts",
	Help: "Number of accounts evaluated by sweeps",
}, []string{"outcome"})

var sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "gatehouse_sweep_duration_sec",
	Help: "Total duration of completed account sweeps",
})
