package amm

import (
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"ammcore/internal/ledger"
)

// Metrics holds the engine's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	units      *prometheus.CounterVec
	rejections *prometheus.CounterVec
	batchItems *prometheus.HistogramVec
	reserve    *prometheus.GaugeVec
}

// NewMetrics creates the engine collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amm_units_total",
			Help: "Units of work processed, by operation and outcome.",
		}, []string{"op", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amm_rejections_total",
			Help: "Rejected units of work, by operation and error code.",
		}, []string{"op", "code"}),
		batchItems: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amm_batch_items",
			Help:    "Items per committed unit of work.",
			Buckets: []float64{1, 2, 3, 5, 10},
		}, []string{"op"}),
		reserve: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "amm_reserve",
			Help: "Current pool reserve per side, in smallest token units.",
		}, []string{"side"}),
	}
	if reg != nil {
		reg.MustRegister(m.units, m.rejections, m.batchItems, m.reserve)
	}
	return m
}

func (m *Metrics) committed(op string, items int, pool ledger.Pool) {
	if m == nil {
		return
	}
	m.units.WithLabelValues(op, "committed").Inc()
	m.batchItems.WithLabelValues(op).Observe(float64(items))
	m.reserve.WithLabelValues("x").Set(toFloat(&pool.ReserveX))
	m.reserve.WithLabelValues("y").Set(toFloat(&pool.ReserveY))
}

func (m *Metrics) rejected(op string, err error) {
	if m == nil {
		return
	}
	m.units.WithLabelValues(op, "rejected").Inc()
	m.rejections.WithLabelValues(op, strconv.Itoa(int(CodeOf(err)))).Inc()
}

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
