package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MiguelSanz/Anunzio/internal/pkg/cache"
	"github.com/MiguelSanz/Anunzio/internal/pkg/database"
	"github.com/MiguelSanz/Anunzio/internal/pkg/env"
	"github.com/MiguelSanz/Anunzio/internal/pkg/metrics/counter"
	"github.com/MiguelSanz/Anunzio/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// drain pending view counters to the database
	counter.StartPeriodicFlush(context.Background(), time.Minute)

	app := fiber.New(fiber.Config{
		AppName:   "anunzio",
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
