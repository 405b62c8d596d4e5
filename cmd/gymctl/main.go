package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-gymdesk/components/gym"
	"github.com/goliatone/go-gymdesk/pkg/api"
	"github.com/goliatone/go-gymdesk/pkg/telemetry"
)

type cli struct {
	Config    string `short:"c" env:"GYMDESK_CONFIG" help:"Path to a gymdesk YAML config file."`
	EnvFile   string `type:"path" default:".env" help:"Dotenv file loaded before reading the environment."`
	LogLevel  string `help:"Override log.level (debug, info, warn, error)."`
	LogFormat string `help:"Override log.format (console or json)."`
	Demo      bool   `help:"Use the built-in in-memory gym instead of the REST backend."`

	Login      loginCmd      `cmd:"" help:"Sign in and store the session token."`
	Logout     logoutCmd     `cmd:"" help:"Forget the stored session."`
	Stats      statsCmd      `cmd:"" help:"Print derived attendance, plan, and trainer statistics."`
	Members    membersCmd    `cmd:"" help:"List and search members."`
	Attendance attendanceCmd `cmd:"" help:"Check members in and out."`
	Payments   paymentsCmd   `cmd:"" help:"List payments and settle pending ones."`
	Report     reportCmd     `cmd:"" help:"Fetch a report and export it as CSV."`
	Enroll     enrollCmd     `cmd:"" help:"Enroll a new member with plan, trainer, and payment."`
	Serve      serveCmd      `cmd:"" help:"Serve the dashboard and JSON API over HTTP."`
	ShowConfig showConfigCmd `cmd:"" name:"config" help:"Print the effective configuration as YAML."`
}

// runtime is the wiring shared by every subcommand.
type runtime struct {
	cfg       gym.Config
	logger    zerolog.Logger
	telemetry *telemetry.Logger
	session   *gym.Session
	store     gym.FileSessionStore
	auth      gym.AuthRepository
	service   *gym.Service
	out       io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	parser := kong.Parse(&root,
		kong.Name("gymctl"),
		kong.Description("Gym front-desk utility backed by the gym REST API."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	rt, err := root.setup(os.Stdout)
	parser.FatalIfErrorf(err)
	parser.FatalIfErrorf(parser.Run(rt))
}

func (c *cli) setup(out io.Writer) (*runtime, error) {
	if err := gym.LoadDotEnv(c.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := gym.LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	logger, err := telemetry.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		telemetry: telemetry.NewTelemetry(logger),
		session:   gym.NewSession(),
		store:     gym.FileSessionStore{Path: cfg.Session.Path},
		out:       out,
	}

	var backend gym.Backend
	if c.Demo {
		mock := api.NewMockClient(api.DemoData(time.Now().In(loc)))
		backend, rt.auth = mock, mock
		logger.Info().Msg("using in-memory demo gym")
	} else if cfg.API.BaseURL != "" {
		if err := rt.restoreSession(); err != nil {
			return nil, err
		}
		client, err := api.NewClient(api.Config{
			BaseURL:   cfg.API.BaseURL,
			Session:   rt.session,
			Timeout:   cfg.API.Timeout,
			RateLimit: cfg.API.RateLimit,
			Burst:     cfg.API.Burst,
			OnUnauthorized: func(context.Context) {
				logger.Warn().Msg("backend rejected the session; run `gymctl login` again")
			},
		})
		if err != nil {
			return nil, err
		}
		backend, rt.auth = client, client
	} else {
		logger.Debug().Msg("api.base_url not set; backend commands are unavailable")
	}
	rt.session.OnLogout(func(reason string) {
		logger.Debug().Str("reason", reason).Msg("session cleared")
		if err := rt.store.Delete(); err != nil {
			logger.Error().Err(err).Msg("remove stored session")
		}
	})

	rt.service = gym.NewService(gym.Options{
		Backend:          backend,
		Cache:            gym.NewQueryCache(cfg.Cache.TTL),
		Telemetry:        rt.telemetry,
		Location:         loc,
		ExpiryWindowDays: cfg.Alerts.ExpiryWindowDays,
		RequireTrainer:   cfg.Forms.RequireTrainer,
	})
	return rt, nil
}

// restoreSession prefers a configured token over the stored session.
func (rt *runtime) restoreSession() error {
	if rt.cfg.API.Token != "" {
		rt.session.Set(rt.cfg.API.Token, gym.User{})
		return nil
	}
	state, err := rt.store.Load()
	if err != nil {
		return err
	}
	if state.Token != "" && !rt.session.Restore(state) {
		rt.logger.Info().Msg("stored session has expired")
		return rt.store.Delete()
	}
	return nil
}

func (rt *runtime) printf(format string, args ...any) {
	fmt.Fprintf(rt.out, format, args...)
}
