//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"
	"go.uber.org/zap"
)

func newProduction() (*zap.Logger, error) {
	return zap.NewProduction()
}

func ProvideLogger() (*zap.Logger, error) {
	wire.Build(newProduction)
	return nil, nil
}
