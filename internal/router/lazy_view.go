package router

import (
	"context"
	"sync"

	"github.com/horockey/settingsapp/internal/gateway/view_modules"
	"github.com/horockey/settingsapp/internal/model"
)

// Resolve-once handle of a view module.
// Failed loads are not memoized.
type lazyView struct {
	chunk  string
	module string
	gw     view_modules.Gateway

	mu   sync.Mutex
	view model.View
}

func newLazyView(chunk, module string, gw view_modules.Gateway) *lazyView {
	return &lazyView{
		chunk:  chunk,
		module: module,
		gw:     gw,
	}
}

// Returns memoized view or loads it.
// loaded is true only for the call that actually performed the load.
func (lv *lazyView) resolve(ctx context.Context) (view model.View, loaded bool, resErr error) {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	if lv.view != nil {
		return lv.view, false, nil
	}

	view, err := lv.gw.Load(ctx, lv.chunk, lv.module)
	if err != nil {
		return nil, false, model.ModuleLoadError{Module: lv.module, Err: err}
	}

	lv.view = view
	return view, true, nil
}

func (lv *lazyView) isLoaded() bool {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	return lv.view != nil
}
