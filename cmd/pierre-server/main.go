package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/pierre-fitness/pierre-server/internal/a2a"
	"github.com/pierre-fitness/pierre-server/internal/admin"
	"github.com/pierre-fitness/pierre-server/internal/config"
	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/mcp"
	"github.com/pierre-fitness/pierre-server/internal/restapi"
	"github.com/pierre-fitness/pierre-server/internal/sse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("config: %v", err)
	}
	applyLogLevel(cfg.Server.LogLevel)

	logx.Info("starting pierre-server...")

	container, err := NewContainer(cfg)
	if err != nil {
		logx.Fatalf("container: %v", err)
	}
	defer container.Cleanup()

	if cfg.Server.MCPTransport == "stdio" {
		runStdio(container)
		return
	}

	app := fiber.New(fiber.Config{
		AppName:               "pierre-server",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             4 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Header: "X-Request-ID"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key, X-Request-ID",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${reqHeader:X-Request-ID}\n",
	}))

	restapi.RegisterRoutes(app, container.RestDeps, container.Middleware)
	admin.RegisterRoutes(app, container.AdminDeps, container.Middleware)
	sse.RegisterRoutes(app, container.Hub, container.Authn)
	mcp.RegisterRoutes(app, container.MCPServer, container.Authn)
	a2a.RegisterRoutes(app, container.A2AServer, container.Authn, container.Store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container.StartBackgroundServices(ctx)

	go func() {
		logx.Infof("listening on :%s", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logx.Fatalf("server error: %v", err)
		}
	}()

	gracefulShutdown(app, cancel, cfg)
}

func runStdio(container *Container) {
	apiKey := os.Getenv("PIERRE_STDIO_API_KEY")
	if apiKey == "" {
		logx.Fatal("MCP_TRANSPORT=stdio requires PIERRE_STDIO_API_KEY to scope this process to one caller")
	}
	result, err := container.Authn.Authenticate(context.Background(), apiKey)
	if err != nil {
		logx.Fatalf("stdio: failed to authenticate PIERRE_STDIO_API_KEY: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container.StartBackgroundServices(ctx)

	if err := mcp.RunStdio(os.Stdin, os.Stdout, container.MCPServer, *result); err != nil {
		logx.Fatalf("stdio: %v", err)
	}
}

func gracefulShutdown(app *fiber.App, cancel context.CancelFunc, cfg *config.Config) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logx.Info("shutting down...")
	cancel()
	if err := app.ShutdownWithTimeout(cfg.Server.GracePeriod); err != nil {
		logx.WithError(err).Warn("server forced to shut down")
	}
	logx.Info("shutdown complete")
}

func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	}).WithError(err).Error("request error")

	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message, "code": "HTTP_ERROR"})
	}
	if xe, ok := err.(*errx.Error); ok {
		return c.Status(xe.HTTPStatus).JSON(xe)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
		"code":  "INTERNAL",
	})
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		logx.SetLevel(logx.LevelDebug)
	case "warn":
		logx.SetLevel(logx.LevelWarn)
	case "error":
		logx.SetLevel(logx.LevelError)
	default:
		logx.SetLevel(logx.LevelInfo)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
