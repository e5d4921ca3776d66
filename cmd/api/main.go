package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/api/analyze"
	"github.com/MayTheStar/EVAL/internal/api/healthcheck"
	"github.com/MayTheStar/EVAL/internal/api/ingest"
	"github.com/MayTheStar/EVAL/internal/api/query"
	"github.com/MayTheStar/EVAL/internal/api/retriever"
	"github.com/MayTheStar/EVAL/internal/api/upload"
	"github.com/MayTheStar/EVAL/internal/database"
	"github.com/MayTheStar/EVAL/internal/middleware"
	"github.com/MayTheStar/EVAL/pkg/logger"

	"github.com/gofiber/fiber/v3"
	milvus "github.com/milvus-io/milvus-sdk-go/v2/client"
)

func main() {
	fiberCfg := fiber.Config{AppName: config.Cfg.Server.AppName}
	if config.Cfg.Server.BodyLimit > 0 {
		fiberCfg.BodyLimit = config.Cfg.Server.BodyLimit
	}
	app := fiber.New(fiberCfg)

	middleware.Register(app)

	if err := database.Migrate(); err != nil {
		logger.Fatal(err, "database migration failed")
	}

	// Milvus connectivity check on startup, non-fatal so the API can come up
	// before the vector store does.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	cli, err := milvus.NewClient(ctx, milvus.Config{Address: config.Cfg.Milvus.Address})
	cancel()
	if err != nil {
		logger.Error(err, "milvus connect error")
	} else {
		cli.Close()
		logger.Info("milvus ok")
	}

	healthcheck.RegisterRoutes(app)
	upload.RegisterRoutes(app)
	ingest.RegisterRoutes(app)
	analyze.RegisterRoutes(app)
	retriever.RegisterRoutes(app)
	query.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	if err := app.Listen(addr); err != nil {
		logger.Error(err, "server error")
	}
}
