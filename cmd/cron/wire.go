//go:build wireinject
// +build wireinject

package main

import (
	"os"

	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/conf"
	"everkeep/memorial-service/internal/crypto"
	"everkeep/memorial-service/internal/data"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// CronApp holds the usecases the scheduled jobs run against.
type CronApp struct {
	Webhook   *biz.WebhookUsecase
	Guestbook *biz.GuestbookUsecase
}

func wireApp(*conf.Bootstrap) (*CronApp, func(), error) {
	panic(wire.Build(
		newLogger,

		data.ProviderSet,
		biz.ProviderSet,
		crypto.ProviderSet,

		wire.Struct(new(CronApp), "*"),
	))
}

func newLogger(c *conf.Bootstrap) log.Logger {
	return log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", "memorial-cron",
	)
}
