//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/conf"
	"everkeep/memorial-service/internal/crypto"
	"everkeep/memorial-service/internal/data"
	"everkeep/memorial-service/internal/server"
	"everkeep/memorial-service/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Bootstrap, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(server.ProviderSet, data.ProviderSet, biz.ProviderSet, service.ProviderSet, crypto.ProviderSet, newApp))
}
