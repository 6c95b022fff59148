package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"remindcal/internal/config"
	"remindcal/internal/gateway"
	applog "remindcal/internal/log"
	"remindcal/internal/view"
	"remindcal/internal/web"
)

// flagConfig holds CLI flag values. The user/mode/id/message/date/
// recurrence flags mirror the mini-app launch parameters.
type flagConfig struct {
	configPath string
	listen     string
	serve      bool
	debug      bool

	user       string
	mode       string
	id         int64
	message    string
	date       string
	recurrence string
}

func main() {
	flags := parseFlags()
	if flags.debug {
		applog.SetLevel(applog.LevelDebug)
	}
	defer applog.Sync()

	applog.Info("remindcal starting", "serve", flags.serve)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			applog.Error("failed to load config", err, "config_path", flags.configPath)
			os.Exit(1)
		}
		// First-run save can fail (e.g. read-only /etc); run on defaults.
		applog.Error("could not persist default config; continuing on defaults", err, "config_path", flags.configPath)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.user != "" {
		conf.UserID = flags.user
	}

	loc := resolveLocationOrLocal(conf.Timezone)

	applog.Info("effective config",
		"listen", conf.Listen,
		"backend_url", conf.BackendURL,
		"timezone", loc.String(),
		"refresh", conf.RefreshCron,
		"http_timeout_s", conf.HTTPTimeoutSeconds,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		applog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	gw := gateway.NewClient(conf.BackendURL, time.Duration(conf.HTTPTimeoutSeconds)*time.Second, loc)

	if flags.serve {
		runServe(ctx, conf, gw, loc)
		return
	}
	runSession(ctx, conf, gw, loc, flags)
}

// runSession runs one launch-parameter-driven session and renders it as
// text to stdout.
func runSession(ctx context.Context, conf *config.Config, gw gateway.Gateway, loc *time.Location, flags flagConfig) {
	params := view.Params{
		UserID:     conf.UserID,
		Mode:       view.Mode(flags.mode),
		ReminderID: flags.id,
		Message:    flags.message,
		DateTime:   flags.date,
		Recurrence: flags.recurrence,
	}

	ctrl := view.NewController(gw, newTextRenderer(os.Stdout), params, loc)
	ctrl.Start(ctx)
}

// runServe runs the mini-app API with a cron-scheduled reminder cache
// refresh until the context is cancelled.
func runServe(ctx context.Context, conf *config.Config, gw gateway.Gateway, loc *time.Location) {
	srv := web.NewServer(conf, gw, loc)

	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(conf.HTTPTimeoutSeconds)*time.Second)
		defer cancel()
		srv.RefreshCache(refreshCtx)
	}); err != nil {
		applog.Error("invalid refresh schedule; cache refresh disabled", err, "refresh", conf.RefreshCron)
	} else {
		sched.Start()
		defer sched.Stop()
	}

	httpSrv := &http.Server{Addr: conf.Listen, Handler: srv.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	applog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	applog.Info("remindcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/remindcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the mini-app API instead of running a one-shot session")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.StringVar(&cfg.user, "user", "", "User id (overrides config if set)")
	flag.StringVar(&cfg.mode, "mode", "calendar", "Launch mode: edit, calendar or notes")
	flag.Int64Var(&cfg.id, "id", 0, "Reminder id to edit (edit mode)")
	flag.StringVar(&cfg.message, "message", "", "Initial reminder message (edit mode)")
	flag.StringVar(&cfg.date, "date", "", `Initial date-time "YYYY-MM-DD HH:MM:SS" (edit mode)`)
	flag.StringVar(&cfg.recurrence, "recurrence", "", "Initial recurrence rule (edit mode)")

	flag.Parse()

	return cfg
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		applog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
