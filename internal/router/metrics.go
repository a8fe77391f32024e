package router

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist   prometheus.Histogram
	navigationsCnt   prometheus.Counter
	moduleLoadsCnt   prometheus.Counter
	moduleErrsCnt    prometheus.Counter
	routesMissesCnt  prometheus.Counter
	loadedViewsGauge prometheus.Gauge
}

func newMetrics() *metrics {
	const ss = "router"
	return &metrics{
		handleTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Navigation time distribution"),
		)),
		navigationsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "navigations_cnt",
			Subsystem: ss,
			Help:      "Count of navigations",
		}),
		moduleLoadsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "module_loads_cnt",
			Subsystem: ss,
			Help:      "Count of view modules loaded",
		}),
		moduleErrsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "module_load_errs_cnt",
			Subsystem: ss,
			Help:      "Count of failed view module loads",
		}),
		routesMissesCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "route_misses_cnt",
			Subsystem: ss,
			Help:      "Count of navigations to unknown paths",
		}),
		loadedViewsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "loaded_views_gauge",
			Subsystem: ss,
			Help:      "actual count of resolved view modules",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.navigationsCnt,
		m.moduleLoadsCnt,
		m.moduleErrsCnt,
		m.routesMissesCnt,
		m.loadedViewsGauge,
	}
}
