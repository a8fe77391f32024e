package stamps

import (
	"github.com/horockey/settingsapp/internal/model"
)

// Repository is a persistent key-value store.
// Writes unconditionally overwrite previous value of the key.
type Repository[V any] interface {
	model.MetricsProvider
	SetItem(key string, value V) (V, error)
	GetItem(key string) (V, error)
	RemoveItem(key string) error
}
