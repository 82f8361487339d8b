// Package metrics holds the client's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mines_client_events_total",
		Help: "Inbound authority events processed, by event name.",
	}, []string{"event"})
	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mines_client_events_dropped_total",
		Help: "Inbound frames dropped at the protocol boundary, by reason.",
	}, []string{"reason"})
	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mines_client_reconnects_total",
		Help: "Websocket connection attempts after the first.",
	})
	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mines_client_connected",
		Help: "1 while the authority connection is up.",
	})
	BetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mines_client_bets_total",
		Help: "Local bet attempts, by result (accepted or the rejection reason).",
	}, []string{"result"})
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mines_client_settlements_total",
		Help: "Settled local bets, by outcome.",
	}, []string{"outcome"})
	Balance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mines_client_balance",
		Help: "Current local balance.",
	})
	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mines_client_store_errors_total",
		Help: "Persistence failures, by operation.",
	}, []string{"op"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
