package settingsapp

import (
	"context"

	"github.com/horockey/settingsapp/internal/gateway/view_modules"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/repository/stamps"
	"github.com/horockey/settingsapp/internal/router"
	"github.com/horockey/settingsapp/internal/updater"
)

type (
	StoreUpdate = model.StoreUpdate
	RouteEntry  = model.RouteEntry
	View        = model.View
	ViewData    = model.ViewData
	Route       = router.Route
	Match       = router.Match

	Updater = updater.Updater
	Router  = router.Router

	// Persistent key-value store holding update timestamps.
	StampsRepository = stamps.Repository[int64]
	ViewGateway      = view_modules.Gateway
)

// Namespace is the store key holding last update time.
const Namespace = updater.Namespace

type Controller interface {
	model.MetricsProvider
	Start(ctx context.Context) error
}
