package view_modules

import (
	"context"

	"github.com/horockey/settingsapp/internal/model"
)

// Gateway resolves view modules by chunk and module name.
type Gateway interface {
	model.MetricsProvider
	Load(ctx context.Context, chunk string, module string) (model.View, error)
}
