package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"maps"
	"path"
	"strings"
	"time"

	"github.com/horockey/settingsapp/internal/gateway/view_modules"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Route is a navigable leaf of a compiled route table.
// Modules lists view modules from the outermost container to the leaf itself.
type Route struct {
	Name    string
	Path    string
	Modules []string
}

type Match struct {
	Route Route
	Views []model.View
}

type compiledRoute struct {
	Route
	chain []*lazyView
}

// Router consumes a static route table and resolves its view modules
// lazily, on first navigation to a route that needs them.
type Router struct {
	routes  []*compiledRoute
	byPath  map[string]*compiledRoute
	byName  map[string]*compiledRoute
	views   map[string]*lazyView
	links   map[string]string
	logger  zerolog.Logger
	metrics *metrics
}

func New(
	table []model.RouteEntry,
	gw view_modules.Gateway,
	logger zerolog.Logger,
) (*Router, error) {
	if gw == nil {
		return nil, errors.New("got nil view modules gateway")
	}

	if err := validate(table); err != nil {
		return nil, fmt.Errorf("validating table: %w", err)
	}

	r := Router{
		byPath:  map[string]*compiledRoute{},
		byName:  map[string]*compiledRoute{},
		views:   map[string]*lazyView{},
		links:   map[string]string{},
		logger:  logger,
		metrics: newMetrics(),
	}

	for _, entry := range table {
		if err := r.compile(entry, "/", nil, gw); err != nil {
			return nil, fmt.Errorf("compiling %s: %w", entry.Path, err)
		}
	}

	return &r, nil
}

func validate(table []model.RouteEntry) error {
	names := []string{}

	var walk func(entries []model.RouteEntry) error
	walk = func(entries []model.RouteEntry) error {
		for _, e := range entries {
			if e.Module == "" {
				return fmt.Errorf("entry %q has no module", e.Path)
			}
			if e.Name != "" {
				names = append(names, e.Name)
			}
			if err := walk(e.Children); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(table); err != nil {
		return err
	}

	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return fmt.Errorf("duplicate route names: %s", strings.Join(dups, ", "))
	}

	return nil
}

func (r *Router) compile(
	entry model.RouteEntry,
	parentPath string,
	parentChain []*lazyView,
	gw view_modules.Gateway,
) error {
	fullPath := joinPath(parentPath, entry.Path)

	key := entry.Chunk + "/" + entry.Module
	lv, found := r.views[key]
	if !found {
		lv = newLazyView(entry.Chunk, entry.Module, gw)
		r.views[key] = lv
	}

	chain := append(append([]*lazyView{}, parentChain...), lv)

	for _, ch := range entry.Children {
		if err := r.compile(ch, fullPath, chain, gw); err != nil {
			return err
		}
	}

	// unnamed containers are reachable through their children only
	if len(entry.Children) > 0 && entry.Name == "" {
		return nil
	}

	if _, dup := r.byPath[fullPath]; dup {
		return fmt.Errorf("duplicate route path %s", fullPath)
	}

	cr := &compiledRoute{
		Route: Route{
			Name: entry.Name,
			Path: fullPath,
			Modules: lo.Map(chain, func(el *lazyView, _ int) string {
				return el.module
			}),
		},
		chain: chain,
	}

	r.routes = append(r.routes, cr)
	r.byPath[fullPath] = cr
	if entry.Name != "" {
		r.byName[entry.Name] = cr
		r.links[entry.Name] = fullPath
	}

	return nil
}

func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return normalizePath(child)
	}
	return normalizePath(path.Join(parent, child))
}

func normalizePath(p string) string {
	return path.Clean("/" + p)
}

func (r *Router) Metrics() []prometheus.Collector {
	return r.metrics.list()
}

// Routes returns compiled routes in table order.
func (r *Router) Routes() []Route {
	return lo.Map(r.routes, func(el *compiledRoute, _ int) Route {
		res := el.Route
		res.Modules = append([]string{}, el.Modules...)
		return res
	})
}

// URL returns full path of the named route.
func (r *Router) URL(name string) (string, error) {
	cr, found := r.byName[name]
	if !found {
		return "", model.RouteNotFoundError{Name: name}
	}
	return cr.Path, nil
}

// Links returns route name to full path mapping.
func (r *Router) Links() map[string]string {
	return maps.Clone(r.links)
}

// Loaded reports whether given module was resolved already.
func (r *Router) Loaded(module string) bool {
	for _, lv := range r.views {
		if lv.module == module && lv.isLoaded() {
			return true
		}
	}
	return false
}

// Navigate matches the path and resolves only modules of the matched route chain.
// Modules of sibling routes stay untouched.
func (r *Router) Navigate(ctx context.Context, p string) (res Match, resErr error) {
	r.metrics.navigationsCnt.Inc()
	defer func(ts time.Time) {
		r.metrics.handleTimeHist.Observe(float64(time.Since(ts)))
	}(time.Now())

	cr, found := r.byPath[normalizePath(p)]
	if !found {
		r.metrics.routesMissesCnt.Inc()
		return Match{}, model.RouteNotFoundError{Path: p}
	}

	views := make([]model.View, 0, len(cr.chain))
	for _, lv := range cr.chain {
		ts := time.Now()
		view, loaded, err := lv.resolve(ctx)
		if err != nil {
			r.metrics.moduleErrsCnt.Inc()
			r.logger.
				Error().
				Err(err).
				Str("path", cr.Path).
				Send()
			return Match{}, err
		}

		if loaded {
			r.metrics.moduleLoadsCnt.Inc()
			r.metrics.loadedViewsGauge.Inc()
			r.logger.
				Info().
				Str("module", lv.module).
				Str("chunk", lv.chunk).
				Dur("took", time.Since(ts)).
				Msg("module loaded")
		}

		views = append(views, view)
	}

	return Match{
		Route: cr.Route,
		Views: views,
	}, nil
}

// Render navigates to the path and renders matched views into w.
// Each container receives rendered child as its outlet.
func (r *Router) Render(ctx context.Context, p string, w io.Writer) error {
	match, err := r.Navigate(ctx, p)
	if err != nil {
		return fmt.Errorf("navigating: %w", err)
	}

	links := maps.Clone(r.links)

	var outlet template.HTML
	buf := bytes.NewBuffer(nil)
	for i := len(match.Views) - 1; i >= 0; i-- {
		buf.Reset()
		if err := match.Views[i].Render(buf, model.ViewData{
			Outlet:    outlet,
			RouteName: match.Route.Name,
			RoutePath: match.Route.Path,
			Links:     links,
		}); err != nil {
			return fmt.Errorf("rendering %s: %w", match.Views[i].Module(), err)
		}
		outlet = template.HTML(buf.String()) //nolint: gosec
	}

	if _, err := io.WriteString(w, string(outlet)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}
