package settingsapp

import "github.com/horockey/settingsapp/internal/model"

type (
	KeyNotFoundError   = model.KeyNotFoundError
	StorageWriteError  = model.StorageWriteError
	ModuleLoadError    = model.ModuleLoadError
	RouteNotFoundError = model.RouteNotFoundError
)
