package shadowban

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatehouse_shadowban_checks",
	Help: "Number of shadowban checks, by result",
}, []string{"result"})
