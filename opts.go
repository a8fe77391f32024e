package settingsapp

import (
	"errors"
	"fmt"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/repository/stamps/inmemory_stamps"
	"github.com/rs/zerolog"
)

// Option configures App on creation.
type Option = options.Option[createAppParams]

// Sets custom badger root dir.
// Default is ./badger
func WithBadgerDir(dir string) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		if dir == "" {
			return errors.New("got empty badger dir")
		}
		target.badgerDir = dir
		return nil
	}
}

// Sets custom service port.
// Default is 7000.
func WithServicePort(p int) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		if p <= 0 {
			return fmt.Errorf("port must be positive, got: %d", p)
		}
		target.servicePort = p
		return nil
	}
}

// Sets api key required by store endpoints.
// Default is empty, endpoints are not protected.
func WithAPIKey(key string) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		target.apiKey = key
		return nil
	}
}

// Sets custom logger.
// Default is stdout logger.
func WithLogger(l zerolog.Logger) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		target.logger = l
		return nil
	}
}

// Sets custom clock used to stamp updates.
// Default is time.Now.
func WithClock(c func() time.Time) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		if c == nil {
			return errors.New("got nil clock")
		}
		target.clock = model.Clock(c)
		return nil
	}
}

// Keeps stamps in memory instead of badger.
// Stored values are lost on restart.
func WithInmemoryStorage() options.Option[createAppParams] {
	return func(target *createAppParams) error {
		target.stampsRepo = inmemory_stamps.New[int64]()
		return nil
	}
}

// Sets user-defined implementation of stamps repository.
// Default is badger persistent repo.
//
// WARNING! Apply this opt only if you know what you are doing.
func WithStampsRepo(repo StampsRepository) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		if repo == nil {
			return errors.New("got nil stamps repo")
		}
		target.stampsRepo = repo
		return nil
	}
}

// Loads view modules from remote asset host instead of embedded ones.
func WithHTTPViews(baseURL string, timeout time.Duration) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		if baseURL == "" {
			return errors.New("got empty views base url")
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got: %s", timeout.String())
		}
		target.viewsBaseURL = baseURL
		target.viewsTimeout = timeout
		return nil
	}
}

// Sets user-defined view modules gateway.
// Default serves modules embedded into the binary.
func WithViewGateway(gw ViewGateway) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		if gw == nil {
			return errors.New("got nil view gateway")
		}
		target.viewGateway = gw
		return nil
	}
}

// Sets user-defined controller built on top of app updater and router.
// Default is HTTP.
//
// WARNING! Apply this opt only if you know what you are doing.
func WithControllerFactory(f func(upd *Updater, nav *Router) Controller) options.Option[createAppParams] {
	return func(target *createAppParams) error {
		if f == nil {
			return errors.New("got nil controller factory")
		}
		target.controllerFactory = f
		return nil
	}
}
