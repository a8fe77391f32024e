package inmemory_stamps

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist     prometheus.Histogram
	setRequestsCnt     prometheus.Counter
	getRequestsCnt     prometheus.Counter
	delRequestsCnt     prometheus.Counter
	successProcessCnt  prometheus.Counter
	errProcessCnt      prometheus.Counter
	repoSizeItemsGauge prometheus.GaugeFunc
}

func newMetrics[V any](repo *inmemoryStamps[V]) *metrics {
	const ss = "inmemory_stamps"

	return &metrics{
		handleTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution"),
		)),
		setRequestsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "set_requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming set requests",
		}),
		getRequestsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "get_requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming get requests",
		}),
		delRequestsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "del_requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming delete requests",
		}),
		successProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "success_responses_cnt",
			Subsystem: ss,
			Help:      "Count of successfully finished processes",
		}),
		errProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "err_processes_cnt",
			Subsystem: ss,
			Help:      "Count of processes finished with non-nil error",
		}),
		repoSizeItemsGauge: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:      "repo_size_items_gauge",
			Subsystem: ss,
			Help:      "actual count of items in repo",
		}, func() float64 {
			return float64(repo.size())
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.setRequestsCnt,
		m.getRequestsCnt,
		m.delRequestsCnt,
		m.successProcessCnt,
		m.errProcessCnt,
		m.repoSizeItemsGauge,
	}
}
