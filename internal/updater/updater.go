package updater

import (
	"context"
	"fmt"
	"time"

	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/repository/stamps"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Namespace is the store key holding last update time.
const Namespace = "updated"

type Updater struct {
	repo    stamps.Repository[int64]
	clock   model.Clock
	logger  zerolog.Logger
	metrics *metrics
}

func New(
	repo stamps.Repository[int64],
	clock model.Clock,
	logger zerolog.Logger,
) *Updater {
	if clock == nil {
		clock = time.Now
	}

	return &Updater{
		repo:    repo,
		clock:   clock,
		logger:  logger,
		metrics: newMetrics(),
	}
}

func (upd *Updater) Metrics() []prometheus.Collector {
	return upd.metrics.list()
}

// Writes current time (unix ms) under Namespace key and returns
// data paired with the written timestamp.
// Nil data is treated as omitted and replaced with an empty map,
// any other value is passed through as is.
//
// Write failure is reported as model.StorageWriteError and is never retried.
// Concurrent calls are not serialized, the last write wins.
func (upd *Updater) UpdateStore(ctx context.Context, data map[string]any) (res model.StoreUpdate, resErr error) {
	defer func(ts time.Time) {
		upd.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			upd.metrics.successProcessCnt.Inc()
		default:
			upd.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	if data == nil {
		data = map[string]any{}
	}

	now := upd.clock().UnixMilli()

	if err := ctx.Err(); err != nil {
		return model.StoreUpdate{}, fmt.Errorf("checking context: %w", err)
	}

	updated, err := upd.repo.SetItem(Namespace, now)
	if err != nil {
		err = model.StorageWriteError{Key: Namespace, Err: err}
		upd.logger.Error().Err(err).Send()
		return model.StoreUpdate{}, err
	}

	upd.logger.Debug().Str("action", "updateStore").Int64("updated", updated).Send()

	return model.StoreUpdate{
		Data:    data,
		Updated: updated,
	}, nil
}

// Returns timestamp written by the latest successful UpdateStore.
// Returns model.KeyNotFoundError if store was never updated.
func (upd *Updater) LastUpdated(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("checking context: %w", err)
	}

	updated, err := upd.repo.GetItem(Namespace)
	if err != nil {
		return 0, fmt.Errorf("getting from repo: %w", err)
	}

	return updated, nil
}
