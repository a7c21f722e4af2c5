//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/five82/roost/internal/config"
)

// InitializeRuntime builds the runtime for cfg. The returned cleanup flushes
// the logger.
func InitializeRuntime(cfg config.Config) (*Runtime, func(), error) {
	wire.Build(
		provideLogger,
		provideCache,
		provideClient,
		provideStore,
		NewListener,
		wire.Struct(new(Runtime), "*"),
	)
	return nil, nil, nil
}
