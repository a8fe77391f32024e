package http_view_modules

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/settingsapp/internal/gateway/view_modules"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ view_modules.Gateway = &httpViewModules{}

// Fetches module templates from an asset host:
// GET {baseURL}/modules/{chunk}/{module}.tmpl
type httpViewModules struct {
	cl      *resty.Client
	metrics *metrics
	logger  zerolog.Logger
}

func New(
	baseURL string,
	timeout time.Duration,
	logger zerolog.Logger,
) *httpViewModules {
	return &httpViewModules{
		metrics: newMetrics(),
		logger:  logger,
		cl: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0),
	}
}

func (gw *httpViewModules) Metrics() []prometheus.Collector {
	return gw.metrics.list()
}

func (gw *httpViewModules) Load(
	ctx context.Context,
	chunk string,
	module string,
) (res model.View, resErr error) {
	gw.logger.Debug().Str("chunk", chunk).Str("module", module).Msg("Loading module from remote")
	defer func(ts time.Time) {
		gw.metrics.requestsCnt.Inc()
		gw.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			gw.metrics.successProcessCnt.Inc()
		default:
			gw.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	resp, err := gw.cl.R().
		SetContext(ctx).
		SetPathParam("chunk", chunk).
		SetPathParam("module", module).
		Get("/modules/{chunk}/{module}.tmpl")
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("got non-ok response (%s): %s", resp.Status(), resp.String())
	}

	view, err := view_modules.NewTemplateView(module, resp.String())
	if err != nil {
		return nil, fmt.Errorf("building view: %w", err)
	}

	return view, nil
}
