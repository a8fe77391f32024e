package settingsapp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/settingsapp/internal/controller/http_controller"
	"github.com/horockey/settingsapp/internal/gateway/view_modules"
	"github.com/horockey/settingsapp/internal/gateway/view_modules/embedded_view_modules"
	"github.com/horockey/settingsapp/internal/gateway/view_modules/http_view_modules"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/repository/stamps"
	"github.com/horockey/settingsapp/internal/repository/stamps/badger_stamps"
	"github.com/horockey/settingsapp/internal/router"
	"github.com/horockey/settingsapp/internal/routes"
	"github.com/horockey/settingsapp/internal/updater"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App serves the settings section: store update helper
// and lazily loaded settings screens.
type App struct {
	*updater.Updater
	router      *router.Router
	stampsRepo  stamps.Repository[int64]
	viewGateway view_modules.Gateway
	ctrl        Controller
	db          *badger.DB
	Logger      zerolog.Logger
}

type createAppParams struct {
	badgerDir         string
	servicePort       int
	apiKey            string
	clock             model.Clock
	logger            zerolog.Logger
	viewsBaseURL      string
	viewsTimeout      time.Duration
	stampsRepo        stamps.Repository[int64]
	viewGateway       view_modules.Gateway
	controllerFactory func(upd *Updater, nav *Router) Controller
}

func defaultCreateAppParams() createAppParams {
	return createAppParams{
		badgerDir:   "./badger",
		servicePort: 7000, //nolint: mnd
		clock:       time.Now,
		logger: zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("scope", "settingsapp").
			Logger(),
	}
}

func NewApp(opts ...options.Option[createAppParams]) (*App, error) {
	params := defaultCreateAppParams()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	app := App{Logger: params.logger}

	if params.stampsRepo == nil {
		db, err := badger.Open(badger.DefaultOptions(params.badgerDir))
		if err != nil {
			return nil, fmt.Errorf("opening badger db: %w", err)
		}
		app.db = db
		params.stampsRepo = badger_stamps.New[int64](db)
	}

	if params.viewGateway == nil {
		switch params.viewsBaseURL {
		case "":
			params.viewGateway = embedded_view_modules.New()
		default:
			params.viewGateway = http_view_modules.New(
				params.viewsBaseURL,
				params.viewsTimeout,
				params.logger.With().Str("subscope", "http_view_modules").Logger(),
			)
		}
	}

	nav, err := router.New(
		routes.Settings(),
		params.viewGateway,
		params.logger.With().Str("subscope", "router").Logger(),
	)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("creating router: %w", err),
			app.closeDB(),
		)
	}

	upd := updater.New(
		params.stampsRepo,
		params.clock,
		params.logger.With().Str("subscope", "updater").Logger(),
	)

	if params.controllerFactory == nil {
		params.controllerFactory = func(upd *Updater, nav *Router) Controller {
			return http_controller.New(
				"0.0.0.0:"+strconv.Itoa(params.servicePort),
				params.apiKey,
				upd,
				nav,
				params.logger.With().Str("subscope", "http_controller").Logger(),
			)
		}
	}

	app.Updater = upd
	app.router = nav
	app.stampsRepo = params.stampsRepo
	app.viewGateway = params.viewGateway
	app.ctrl = params.controllerFactory(upd, nav)

	if app.ctrl == nil {
		return nil, errors.Join(
			errors.New("controller factory returned nil"),
			app.closeDB(),
		)
	}

	return &app, nil
}

// Start runs controller until ctx is done or controller fails.
func (app *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.ctrl.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			app.Logger.
				Error().
				Err(fmt.Errorf("running controller: %w", err)).
				Send()
			cancel()
		}
	}()

	<-runCtx.Done()
	wg.Wait()
	return fmt.Errorf("running context: %w", runCtx.Err())
}

// Router returns settings routes consumer.
func (app *App) Router() *Router {
	return app.router
}

func (app *App) Metrics() []prometheus.Collector {
	return slices.Concat(
		app.ctrl.Metrics(),
		app.Updater.Metrics(),
		app.router.Metrics(),
		app.stampsRepo.Metrics(),
		app.viewGateway.Metrics(),
	)
}

// Close releases storage opened by app.
func (app *App) Close() error {
	return app.closeDB()
}

func (app *App) closeDB() error {
	if app.db == nil {
		return nil
	}

	err := app.db.Close()
	app.db = nil
	if err != nil {
		return fmt.Errorf("closing badger db: %w", err)
	}
	return nil
}

// SettingsRoutes returns a copy of settings route table.
func SettingsRoutes() []RouteEntry {
	return routes.Settings()
}
