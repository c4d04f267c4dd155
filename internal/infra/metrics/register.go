package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pending     []prometheus.Collector
	defaultOnce sync.Once
)

// register queues collectors from the init() of each metrics file.
func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister adds every queued collector to the default registry. Calls
// after the first are no-ops.
func MustRegister() {
	defaultOnce.Do(func() { MustRegisterWith(prometheus.DefaultRegisterer) })
}

// MustRegisterWith adds every queued collector to r and panics on a
// duplicate, like prometheus.MustRegister.
func MustRegisterWith(r prometheus.Registerer) {
	if len(pending) == 0 {
		return
	}
	r.MustRegister(pending...)
}
