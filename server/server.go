package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/spektr-org/seriesagg/translator"
)

// Options configures the HTTP API.
type Options struct {
	AllowOrigins string
	Datasets     Datasets
	Translator   translator.Translator
	ExportPrefix string
}

// New builds the fiber app with middleware and routes mounted.
func New(o Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "seriesagg",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: log.Writer()}))
	app.Use(cors.New(cors.Config{AllowOrigins: o.AllowOrigins}))

	NewHandler(o.Datasets, o.Translator, o.ExportPrefix).Register(app)
	return app
}
