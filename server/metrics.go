package server

import (
	"net/http"

	"github.com/hoermto/unifi-energy/api"
	"github.com/hoermto/unifi-energy/core"
	"github.com/hoermto/unifi-energy/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports accumulator values as prometheus gauges
type Metrics struct {
	registry *prometheus.Registry
	energy   *prometheus.GaugeVec
	power    *prometheus.GaugeVec
}

// NewMetrics creates the energy gauges on their own registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: api.Namespace,
			Name:      "energy_kwh",
			Help:      "Accumulated energy in kWh.",
		}, []string{"entity_id", "device_id"}),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: api.Namespace,
			Name:      "power_watts",
			Help:      "Last valid power reading in W.",
		}, []string{"entity_id", "device_id"}),
	}

	m.registry.MustRegister(m.energy, m.power)

	return m
}

// Handler serves the metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe updates the gauges of an accumulator
func (m *Metrics) Observe(state api.EnergyState) {
	m.energy.WithLabelValues(state.EntityID, state.DeviceID).Set(state.Total)

	power := state.Attributes.LastPower
	if power == nil {
		power = state.Attributes.LastAggregatePower
	}
	if power != nil {
		m.power.WithLabelValues(state.EntityID, state.DeviceID).Set(*power)
	}
}

// Run observes energy values received from the publish channel
func (m *Metrics) Run(in <-chan util.Param) {
	for p := range in {
		if state, ok := p.Val.(api.EnergyState); ok && p.Key == core.EnergyKey {
			m.Observe(state)
		}
	}
}
