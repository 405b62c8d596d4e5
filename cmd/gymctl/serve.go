package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-gymdesk/components/gym"
	"github.com/goliatone/go-gymdesk/components/gym/httpapi"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr      string `help:"Listen address (defaults to server.addr)."`
	Templates string `type:"existingdir" help:"Directory containing templates/dashboard.html to use instead of the built-in page."`
}

func (cmd *serveCmd) Run(ctx context.Context, rt *runtime) error {
	addr := cmd.Addr
	if addr == "" {
		addr = rt.cfg.Server.Addr
	}
	app, err := newServer(rt, cmd.Templates)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info().Str("addr", addr).Msg("serving gym dashboard")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	rt.logger.Info().Msg("server stopped")
	return nil
}

// newServer wires the dashboard page, charts, and JSON API onto a fiber app.
func newServer(rt *runtime, templates string) (*fiber.App, error) {
	var fsys fs.FS
	if templates != "" {
		fsys = os.DirFS(templates)
	}
	renderer, err := gym.NewTemplateRenderer(fsys)
	if err != nil {
		return nil, err
	}
	charts := gym.NewCharts(gym.WithChartCache(gym.NewQueryCache(rt.cfg.Cache.TTL)))
	controller := gym.NewController(gym.ControllerOptions{
		Service:  rt.service,
		Renderer: renderer,
		Charts:   charts,
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(requestLogger(rt.logger))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	httpapi.NewHandlers(rt.service, controller, charts, rt.telemetry, rt.logger).Register(app)
	return app, nil
}

// requestLogger tags each request with an id and logs it once it completes.
func requestLogger(logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "http").Logger()
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.OriginalURL()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
