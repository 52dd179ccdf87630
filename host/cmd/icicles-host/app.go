package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/led-icicles/icicles-serial/host/config"
	"github.com/led-icicles/icicles-serial/host/link"
	"github.com/led-icicles/icicles-serial/host/metrics"
	"github.com/led-icicles/icicles-serial/host/serial"
)

// app holds state shared by all subcommands
type app struct {
	v          *viper.Viper
	configPath string

	cfg    *config.Config
	logger *slog.Logger
}

func newApp() *app {
	return &app{v: viper.New()}
}

func (a *app) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (yaml, json or toml)")
	flags.StringP("device", "d", "/dev/ttyUSB0", "Serial device path")
	flags.Int("baud", serial.DefaultBaud, "Baud rate")
	flags.Duration("ping-every", link.DefaultPingEvery, "Keepalive interval")
	flags.Int("pixels", 0, "Number of pixels on the strip")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100")

	for key, flag := range map[string]string{
		config.KeyDevice:      "device",
		config.KeyBaud:        "baud",
		config.KeyPingEvery:   "ping-every",
		config.KeyPixels:      "pixels",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
		config.KeyMetricsAddr: "metrics-addr",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// openSession opens the serial port and binds a session to it.
// The returned cleanup closes the session and the metrics server.
func (a *app) openSession(ctx context.Context) (*link.Session, func(), error) {
	port, err := serial.Open(a.cfg.SerialConfig())
	if err != nil {
		return nil, nil, err
	}
	session, cleanup := a.bindSession(ctx, port)
	return session, cleanup, nil
}

// bindSession drops stale input on port and binds a session to it
func (a *app) bindSession(ctx context.Context, port serial.Port) (*link.Session, func()) {
	if err := port.Flush(); err != nil {
		a.logger.Warn("flushing serial port failed", "error", err)
	}

	sessionCfg := link.Config{Logger: a.logger}
	stopMetrics := func() {}

	if a.cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		sessionCfg.Observer = metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithConstLabels(prometheus.Labels{"device": a.cfg.Device}),
		)
		stopMetrics = a.serveMetrics(ctx, reg)
	}

	session := link.NewSession(port, sessionCfg)
	session.SetDataHandler(func(chunk []byte) {
		a.logger.Debug("device data", "bytes", len(chunk), "data", fmt.Sprintf("%q", chunk))
	})

	a.logger.Info("connected", "device", a.cfg.Device, "baud", a.cfg.Baud)

	cleanup := func() {
		if err := session.Close(); err != nil {
			a.logger.Warn("closing session failed", "error", err)
		}
		stopMetrics()
	}
	return session, cleanup
}

func (a *app) serveMetrics(ctx context.Context, reg *prometheus.Registry) func() {
	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           metrics.NewRouter(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("serving metrics", "addr", a.cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// hold blocks until ctx is done or d elapses. d <= 0 waits for ctx only.
func hold(ctx context.Context, d time.Duration) {
	if d <= 0 {
		<-ctx.Done()
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// finish stops the session and reports the first error
func finish(session *link.Session, err error) error {
	if stopErr := session.Stop(); stopErr != nil && err == nil {
		err = fmt.Errorf("failed to send end: %w", stopErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
