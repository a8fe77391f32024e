package inmemory_stamps

import (
	"sync"
	"time"

	"github.com/horockey/settingsapp/internal/model"
	"github.com/horockey/settingsapp/internal/repository/stamps"
	"github.com/prometheus/client_golang/prometheus"
)

var _ stamps.Repository[any] = &inmemoryStamps[any]{}

// Volatile repo, contents are lost on restart.
type inmemoryStamps[V any] struct {
	storage map[string]V
	mu      sync.RWMutex
	metrics *metrics
}

func New[V any]() *inmemoryStamps[V] {
	repo := inmemoryStamps[V]{
		storage: map[string]V{},
	}

	repo.metrics = newMetrics(&repo)

	return &repo
}

func (repo *inmemoryStamps[V]) observe(ts time.Time, resErr error) {
	repo.metrics.handleTimeHist.Observe(float64(time.Since(ts)))
	switch resErr {
	case nil:
		repo.metrics.successProcessCnt.Inc()
	default:
		repo.metrics.errProcessCnt.Inc()
	}
}

func (repo *inmemoryStamps[V]) SetItem(key string, value V) (res V, resErr error) {
	repo.metrics.setRequestsCnt.Inc()
	defer func(ts time.Time) {
		repo.observe(ts, resErr)
	}(time.Now())

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.storage[key] = value
	return value, nil
}

func (repo *inmemoryStamps[V]) GetItem(key string) (res V, resErr error) {
	repo.metrics.getRequestsCnt.Inc()
	defer func(ts time.Time) {
		repo.observe(ts, resErr)
	}(time.Now())

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	val, found := repo.storage[key]
	if !found {
		return *new(V), model.KeyNotFoundError{Key: key}
	}

	return val, nil
}

func (repo *inmemoryStamps[V]) RemoveItem(key string) (resErr error) {
	repo.metrics.delRequestsCnt.Inc()
	defer func(ts time.Time) {
		repo.observe(ts, resErr)
	}(time.Now())

	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.storage, key)
	return nil
}

func (repo *inmemoryStamps[V]) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *inmemoryStamps[V]) size() int {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return len(repo.storage)
}
