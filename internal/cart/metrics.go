package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/domain"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_commands_total",
		Help: "Cart commands that changed a cart, by kind.",
	}, []string{"kind"})

	persistTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_writes_total",
		Help: "Cart slot writes by result.",
	}, []string{"result"})

	hydrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_hydrations_total",
		Help: "Cart store initialisations by outcome (restored, empty, malformed, error).",
	}, []string{"outcome"})

	openStores = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cart_open_stores",
		Help: "Session carts currently held in memory.",
	})
)

// MetricsHook counts applied commands.
func MetricsHook() Hook {
	return func(_ string, cmd domain.Command, _ domain.Cart) {
		commandsTotal.WithLabelValues(string(cmd.Kind())).Inc()
	}
}
