package http_controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/horockey/go-toolbox/http_helpers"
	"github.com/horockey/settingsapp/internal/controller/http_controller/dto"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type StoreUpdater interface {
	UpdateStore(ctx context.Context, data map[string]any) (model.StoreUpdate, error)
	LastUpdated(ctx context.Context) (int64, error)
}

type Navigator interface {
	Routes() []router.Route
	Render(ctx context.Context, path string, w io.Writer) error
}

type HttpController struct {
	serv    *http.Server
	mux     *mux.Router
	apiKey  string
	upd     StoreUpdater
	nav     Navigator
	logger  zerolog.Logger
	metrics *metrics
}

func New(
	addr string,
	apiKey string,
	upd StoreUpdater,
	nav Navigator,
	logger zerolog.Logger,
) *HttpController {
	ctrl := HttpController{
		serv: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second, //nolint: mnd
		},
		apiKey:  apiKey,
		upd:     upd,
		nav:     nav,
		logger:  logger,
		metrics: newMetrics(),
	}

	mr := mux.NewRouter()
	mr.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctrl.metrics.unmatchedCnt.Inc()
		_ = http_helpers.RespondWithErr(w, http.StatusNotFound, model.RouteNotFoundError{Path: req.URL.Path})
	})

	mr.Handle("/store", ctrl.metricsMW(surfaceStore, ctrl.storeMW(ctrl.postStoreHandler))).
		Methods(http.MethodPost)
	mr.Handle("/store/updated", ctrl.metricsMW(surfaceStore, ctrl.storeMW(ctrl.getStoreUpdatedHandler))).
		Methods(http.MethodGet)

	view := ctrl.metricsMW(surfaceView, http.HandlerFunc(ctrl.viewHandler))
	for _, rt := range nav.Routes() {
		r := mr.Handle(rt.Path, view).Methods(http.MethodGet)
		if rt.Name != "" {
			r.Name(rt.Name)
		}
		if rt.Path != "/" {
			mr.Handle(rt.Path+"/", view).Methods(http.MethodGet)
		}
	}

	ctrl.mux = mr
	ctrl.serv.Handler = mr

	return &ctrl
}

func (ctrl *HttpController) Metrics() []prometheus.Collector {
	return ctrl.metrics.list()
}

func (ctrl *HttpController) Handler() http.Handler {
	return ctrl.mux
}

// URL builds path of the named route registered in mux.
func (ctrl *HttpController) URL(name string) (string, error) {
	r := ctrl.mux.Get(name)
	if r == nil {
		return "", model.RouteNotFoundError{Name: name}
	}

	u, err := r.URL()
	if err != nil {
		return "", fmt.Errorf("building url: %w", err)
	}

	return u.Path, nil
}

func (ctrl *HttpController) Start(ctx context.Context) (resErr error) {
	var wg sync.WaitGroup
	defer wg.Wait()

	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctrl.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
			resErr = errors.Join(resErr, fmt.Errorf("running context: %w", ctx.Err()))
		}

		sdCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := ctrl.serv.Shutdown(sdCtx); err != nil {
			resErr = errors.Join(resErr, fmt.Errorf("shutting down server: %w", err))
		}
		return resErr

	case err := <-errCh:
		return fmt.Errorf("running server: %w", err)
	}
}

func (ctrl *HttpController) metricsMW(surface string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctrl.metrics.requestsCnt.WithLabelValues(surface).Inc()
		defer func(ts time.Time) {
			ctrl.metrics.handleTimeHist.WithLabelValues(surface).Observe(float64(time.Since(ts)))
		}(time.Now())

		next.ServeHTTP(w, req)
	})
}

// Store endpoints require api key when it is configured.
func (ctrl *HttpController) storeMW(h http.HandlerFunc) http.Handler {
	if ctrl.apiKey == "" {
		return h
	}
	return ctrl.authMW(h)
}

func (ctrl *HttpController) authMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("X-Api-Key") != ctrl.apiKey {
			ctrl.metrics.authRejectedCnt.Inc()
			ctrl.metrics.errProcessCnt.WithLabelValues(surfaceStore).Inc()
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (ctrl *HttpController) respondErr(w http.ResponseWriter, surface string, err error) {
	ctrl.metrics.errProcessCnt.WithLabelValues(surface).Inc()
	ctrl.logger.Error().Err(err).Send()

	switch {
	case errors.As(err, new(model.RouteNotFoundError)),
		errors.As(err, new(model.KeyNotFoundError)):
		_ = http_helpers.RespondWithErr(w, http.StatusNotFound, err)
	case errors.As(err, new(model.ModuleLoadError)):
		_ = http_helpers.RespondWithErr(w, http.StatusBadGateway, nil)
	case errors.As(err, new(model.StorageWriteError)):
		_ = http_helpers.RespondWithErr(w, http.StatusInsufficientStorage, nil)
	default:
		_ = http_helpers.RespondWithErr(w, http.StatusInternalServerError, nil)
	}
}

func (ctrl *HttpController) viewHandler(w http.ResponseWriter, req *http.Request) {
	buf := bytes.NewBuffer(nil)
	if err := ctrl.nav.Render(req.Context(), req.URL.Path, buf); err != nil {
		ctrl.respondErr(w, surfaceView, fmt.Errorf("rendering %s: %w", req.URL.Path, err))
		return
	}

	ctrl.metrics.successProcessCnt.WithLabelValues(surfaceView).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (ctrl *HttpController) postStoreHandler(w http.ResponseWriter, req *http.Request) {
	data, err := decodeStoreBody(req.Body)
	if err != nil {
		err = fmt.Errorf("decoding body: %w", err)
		ctrl.metrics.errProcessCnt.WithLabelValues(surfaceStore).Inc()
		ctrl.logger.Error().Err(err).Send()
		_ = http_helpers.RespondWithErr(w, http.StatusBadRequest, err)
		return
	}

	res, err := ctrl.upd.UpdateStore(req.Context(), data)
	if err != nil {
		ctrl.respondErr(w, surfaceStore, fmt.Errorf("updating store: %w", err))
		return
	}

	ctrl.metrics.successProcessCnt.WithLabelValues(surfaceStore).Inc()
	_ = http_helpers.RespondOK(w, dto.NewStoreUpdate(res))
}

func (ctrl *HttpController) getStoreUpdatedHandler(w http.ResponseWriter, req *http.Request) {
	updated, err := ctrl.upd.LastUpdated(req.Context())
	if err != nil {
		ctrl.respondErr(w, surfaceStore, fmt.Errorf("getting last update: %w", err))
		return
	}

	ctrl.metrics.successProcessCnt.WithLabelValues(surfaceStore).Inc()
	_ = http_helpers.RespondOK(w, dto.LastUpdated{Updated: updated})
}

// Empty body means no data. Anything after the first JSON value is rejected.
func decodeStoreBody(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}

	return data, nil
}
