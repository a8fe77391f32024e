package embedded_view_modules

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/horockey/settingsapp/internal/gateway/view_modules"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

//go:embed modules
var modulesFS embed.FS

var _ view_modules.Gateway = &embeddedViewModules{}

var ErrModuleNotFound = errors.New("module not found")

// Serves module templates compiled into the binary.
type embeddedViewModules struct {
	fsys    fs.FS
	metrics *metrics
}

func New() *embeddedViewModules {
	return NewFromFS(modulesFS)
}

// Same as New, but reads modules/{chunk}/{module}.tmpl from fsys.
func NewFromFS(fsys fs.FS) *embeddedViewModules {
	return &embeddedViewModules{
		fsys:    fsys,
		metrics: newMetrics(),
	}
}

func (gw *embeddedViewModules) Metrics() []prometheus.Collector {
	return gw.metrics.list()
}

func (gw *embeddedViewModules) Load(
	ctx context.Context,
	chunk string,
	module string,
) (res model.View, resErr error) {
	defer func(ts time.Time) {
		gw.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			gw.metrics.successProcessCnt.Inc()
		default:
			gw.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("checking context: %w", err)
	}

	src, err := fs.ReadFile(gw.fsys, path.Join("modules", chunk, module+".tmpl"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrModuleNotFound, chunk, module)
		}
		return nil, fmt.Errorf("reading module source: %w", err)
	}

	view, err := view_modules.NewTemplateView(module, string(src))
	if err != nil {
		return nil, fmt.Errorf("building view: %w", err)
	}

	return view, nil
}
