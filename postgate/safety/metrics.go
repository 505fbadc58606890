package safety

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var safetyCheckCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatehouse_safety_checks",
	Help: "Number of safety checks evaluated, by result",
}, []string{"result"})

var rapidFireCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatehouse_safety_burst_trips",
	Help: "Number of times an account exceeded the submission burst limit",
})
