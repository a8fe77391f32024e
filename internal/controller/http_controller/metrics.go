package http_controller

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

// Endpoint families served by controller.
const (
	surfaceView  = "view"
	surfaceStore = "store"
)

const surfaceLabel = "surface"

type metrics struct {
	handleTimeHist    *prometheus.HistogramVec
	requestsCnt       *prometheus.CounterVec
	successProcessCnt *prometheus.CounterVec
	errProcessCnt     *prometheus.CounterVec
	authRejectedCnt   prometheus.Counter
	unmatchedCnt      prometheus.Counter
}

func newMetrics() *metrics {
	const ss = "http_controller"
	m := &metrics{
		handleTimeHist: prometheus.NewHistogramVec(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution by surface (view, store)"),
		), []string{surfaceLabel}),
		requestsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming requests by surface",
		}, []string{surfaceLabel}),
		successProcessCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "success_responses_cnt",
			Subsystem: ss,
			Help:      "Count of rendered views and applied store updates",
		}, []string{surfaceLabel}),
		errProcessCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "err_processes_cnt",
			Subsystem: ss,
			Help:      "Count of requests finished with non-nil error by surface",
		}, []string{surfaceLabel}),
		authRejectedCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "auth_rejected_cnt",
			Subsystem: ss,
			Help:      "Count of store requests rejected for wrong api key",
		}),
		unmatchedCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "unmatched_requests_cnt",
			Subsystem: ss,
			Help:      "Count of requests matching no settings route or store endpoint",
		}),
	}

	// expose both series from start
	for _, s := range []string{surfaceView, surfaceStore} {
		m.requestsCnt.WithLabelValues(s)
		m.successProcessCnt.WithLabelValues(s)
		m.errProcessCnt.WithLabelValues(s)
	}

	return m
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.requestsCnt,
		m.successProcessCnt,
		m.errProcessCnt,
		m.authRejectedCnt,
		m.unmatchedCnt,
	}
}
