package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "gatehouse_check_duration_sec",
	Help: "Total duration of posting permission checks",
}, []string{"outcome"})

var checkCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatehouse_checks_processed",
	Help: "Number of posting permission checks processed",
}, []string{"outcome"})

var recordedPostCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatehouse_posts_recorded",
	Help: "Number of successful submissions recorded",
})

var newFlagCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatehouse_new_account_flags",
	Help: "Number of new account flags persisted",
}, []string{"val"})

var accountMetaFetches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatehouse_account_meta_fetches",
	Help: "Number of account metadata reads (API calls)",
})
