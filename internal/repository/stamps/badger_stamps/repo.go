package badger_stamps

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/repository/stamps"
	"github.com/prometheus/client_golang/prometheus"
)

var _ stamps.Repository[any] = &badgerStamps[any]{}

type badgerStamps[V any] struct {
	db      *badger.DB
	metrics *metrics
}

func New[V any](db *badger.DB) *badgerStamps[V] {
	return &badgerStamps[V]{
		db:      db,
		metrics: newMetrics(db),
	}
}

func (repo *badgerStamps[V]) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *badgerStamps[V]) observe(ts time.Time, resErr error) {
	repo.metrics.requestsCnt.Inc()
	repo.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

	switch resErr {
	case nil:
		repo.metrics.successProcessCnt.Inc()
	default:
		repo.metrics.errProcessCnt.Inc()
	}
}

// Writes value under the key in a single txn.
// Previous value, if any, is overwritten without reading it.
func (repo *badgerStamps[V]) SetItem(key string, value V) (res V, resErr error) {
	defer func(ts time.Time) {
		repo.observe(ts, resErr)
	}(time.Now())

	buf := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buf).Encode(&value); err != nil {
		return *new(V), fmt.Errorf("encoding gob: %w", err)
	}

	if err := repo.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), buf.Bytes()); err != nil {
			return fmt.Errorf("setting item to db: %w", err)
		}
		return nil
	}); err != nil {
		return *new(V), fmt.Errorf("performing upd txn: %w", err)
	}

	return value, nil
}

func (repo *badgerStamps[V]) GetItem(key string) (res V, resErr error) {
	defer func(ts time.Time) {
		repo.observe(ts, resErr)

		switch {
		case resErr == nil:
			repo.metrics.keyHitsCnt.Inc()
		case errors.As(resErr, new(model.KeyNotFoundError)):
			repo.metrics.keyMissesCnt.Inc()
		}
	}(time.Now())

	if err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return model.KeyNotFoundError{Key: key}
			}
			return fmt.Errorf("getting item: %w", err)
		}

		if err := item.Value(func(val []byte) error {
			if err := gob.
				NewDecoder(bytes.NewBuffer(val)).
				Decode(&res); err != nil {
				return fmt.Errorf("decoding gob: %w", err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("getting value: %w", err)
		}

		return nil
	}); err != nil {
		return *new(V), fmt.Errorf("reading from db: %w", err)
	}

	return res, nil
}

func (repo *badgerStamps[V]) RemoveItem(key string) (resErr error) {
	defer func(ts time.Time) {
		repo.observe(ts, resErr)
	}(time.Now())

	if err := repo.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(key)); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing del txn: %w", err)
	}

	return nil
}
