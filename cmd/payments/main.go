package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/soukly/payments/internal/config"
	"github.com/soukly/payments/internal/migration"
	"github.com/soukly/payments/internal/observability/logger"
	"github.com/soukly/payments/internal/server"
	"github.com/soukly/payments/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
