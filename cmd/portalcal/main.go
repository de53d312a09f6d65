package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"portalcal/internal/app"
	"portalcal/internal/auth"
	"portalcal/internal/battery"
	"portalcal/internal/config"
	"portalcal/internal/convert"
	"portalcal/internal/display"
	"portalcal/internal/epd"
	"portalcal/internal/gcal"
	"portalcal/internal/ics"
	appLog "portalcal/internal/log"
	"portalcal/internal/netwait"
	"portalcal/internal/render"
	"portalcal/internal/timewin"
)

const googleAPIAddr = "www.googleapis.com:443"

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	once       bool
	renderOnly bool
	dump       string
}

func main() {
	appLog.Info("portalcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := conf.ApplySecrets(); err != nil {
		appLog.Error("failed to read secrets", err, "secrets_file", conf.SecretsFile)
		os.Exit(1)
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if lvl, ok := appLog.ParseLevel(conf.LogLevel); ok {
		appLog.SetLevel(lvl)
	}

	appLog.Info("effective config",
		"source", conf.Source,
		"timezone", conf.Timezone,
		"refresh", conf.Refresh,
		"look_ahead_days", conf.LookAheadDays,
		"max_events", conf.MaxEvents,
		"use_24h", conf.Use24Hour,
		"panel", conf.Display.Panel && !flags.renderOnly,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	code := run(ctx, conf, flags)
	appLog.Info("portalcal exiting", "code", code)
	os.Exit(code)
}

func run(ctx context.Context, conf *config.Config, flags flagConfig) int {
	resolver := timewin.NewResolver(conf.Timezone)
	client := &http.Client{Timeout: conf.HTTPTimeout}

	var (
		source app.EventSource
		opts   []app.Option
		probe  string
	)
	switch conf.Source {
	case config.SourceICS:
		source = ics.NewSource(conf.ICSURL, client, resolver.Location())
		probe = hostPort(conf.ICSURL)
	default:
		mgr := auth.NewManager(auth.Credentials{
			ClientID:     conf.Google.ClientID,
			ClientSecret: conf.Google.ClientSecret,
			RefreshToken: conf.Google.RefreshToken,
			TokenURL:     conf.Google.TokenURL,
		}, auth.WithHTTPClient(client))
		fetcher, err := gcal.NewFetcher(ctx, mgr, client)
		if err != nil {
			appLog.Error("failed to create calendar client", err)
			return 1
		}
		source = fetcher
		opts = append(opts, app.WithTokens(mgr))
		probe = googleAPIAddr
	}

	screen, cleanup, err := buildScreen(conf, flags)
	if err != nil {
		appLog.Error("failed to set up display", err)
		return 1
	}
	defer cleanup()

	renderer, err := buildRenderer(conf, screen)
	if err != nil {
		appLog.Error("failed to set up renderer", err)
		return 1
	}
	if conf.Battery.Enabled {
		opts = append(opts, app.WithBattery(battery.NewI2CReader(conf.Battery.Bus, conf.Battery.Addr)))
	}

	a, err := app.New(resolver, source, renderer, screen, app.Options{
		CalendarID:    conf.CalendarID,
		MaxEvents:     conf.MaxEvents,
		LookAheadDays: conf.LookAheadDays,
		RetryInterval: conf.RetryInterval,
		Refresh:       conf.Refresh,
	}, opts...)
	if err != nil {
		appLog.Error("failed to create app", err)
		return 1
	}

	if probe != "" {
		if err := netwait.Until(ctx, probe, conf.RetryInterval); err != nil {
			return 0
		}
	}

	if flags.once {
		if err := a.Cycle(ctx); err != nil {
			appLog.Error("cycle failed", err)
			return 1
		}
		return 0
	}

	if err := a.Run(ctx); err != nil {
		return 1
	}
	return 0
}

func buildScreen(conf *config.Config, flags flagConfig) (*display.Screen, func(), error) {
	bg, err := config.ParseColor(conf.Display.Background)
	if err != nil {
		return nil, nil, err
	}

	var sinks []display.Sink
	cleanup := func() {}

	if conf.Display.PreviewPath != "" {
		sinks = append(sinks, &display.PNGSink{Path: conf.Display.PreviewPath})
	}
	if flags.dump != "" {
		sinks = append(sinks, &display.PNGSink{Path: flags.dump})
	}
	if conf.Display.Panel && !flags.renderOnly {
		panel, err := epd.Open("", convert.IsDark(bg))
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, panel)
		cleanup = func() {
			if err := panel.Close(); err != nil {
				appLog.Error("panel close failed", err)
			}
		}
	}
	if len(sinks) == 0 {
		appLog.Warn("no display outputs configured; frames are discarded")
	}

	return display.NewScreen(conf.Display.Width, conf.Display.Height, bg, sinks...), cleanup, nil
}

func buildRenderer(conf *config.Config, screen *display.Screen) (*render.Renderer, error) {
	d := conf.Display
	text, err := config.ParseColor(d.TextColor)
	if err != nil {
		return nil, err
	}
	header, err := config.ParseColor(d.HeaderColor)
	if err != nil {
		return nil, err
	}
	line, err := config.ParseColor(d.LineColor)
	if err != nil {
		return nil, err
	}
	headerFace, err := display.LoadFace(d.HeaderFont, d.HeaderFontSize)
	if err != nil {
		return nil, err
	}
	eventFace, err := display.LoadFace(d.EventFont, d.EventFontSize)
	if err != nil {
		return nil, err
	}

	return render.New(screen.Root(), render.Options{
		Width:       d.Width,
		Use24Hour:   conf.Use24Hour,
		TextColor:   text,
		HeaderColor: header,
		LineColor:   line,
		HeaderFace:  headerFace,
		EventFace:   eventFace,
		Battery:     conf.Battery.Enabled,
	}), nil
}

// hostPort turns a feed URL into a dialable "host:port".
func hostPort(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/portalcal/config.yaml", "Path to config file")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+render+display cycle and exit")
	flag.BoolVar(&cfg.renderOnly, "render-only", false, "Render only; do not touch display hardware")
	flag.StringVar(&cfg.dump, "dump", "", "Also write every frame as PNG to this path")

	flag.Parse()

	return cfg
}
