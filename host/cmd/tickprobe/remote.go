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

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rollclock/host/config"
	"rollclock/host/logging"
	"rollclock/host/remote"
	"rollclock/host/serial"
	"rollclock/protocol"
)

var (
	remoteDevice   string
	remoteInterval time.Duration
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Follow a device's hardware timer over a serial port",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("device") {
			cfg.Device = remoteDevice
		}

		logger := logging.NewLogger(
			logging.WithLevel(cfg.LogLevel),
			logging.WithJSON(cfg.LogJSON),
			logging.WithSetDefault(true),
		)
		logging.BridgeCoreDebug(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runRemote(ctx, cfg, logger)
	},
}

func init() {
	remoteCmd.Flags().StringVarP(&remoteDevice, "device", "D", "", "serial device (overrides config)")
	remoteCmd.Flags().DurationVarP(&remoteInterval, "interval", "i", time.Second, "status log interval")
}

func runRemote(ctx context.Context, cfg *config.ProbeConfig, logger *slog.Logger) error {
	portCfg := serial.DefaultConfig(cfg.Device)
	portCfg.Baud = cfg.Baud
	portCfg.ReadTimeout = time.Duration(cfg.ReadTimeoutMs) * time.Millisecond

	port, err := serial.Open(portCfg)
	if err != nil {
		return err
	}
	logger.Info("connected", "device", cfg.Device, "baud", cfg.Baud)

	timer := remote.New(port, portCfg.ReadTimeout)
	timer.OnFrameError = func(err error) {
		logger.Debug("dropped frame", "error", err)
	}
	first := make(chan uint32, 1)
	timer.OnReport = func(r protocol.TickReport) {
		select {
		case first <- r.Ticks:
		default:
		}
	}

	reg := prometheus.NewRegistry()
	remote.NewMetrics(reg).Attach(timer)

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return timer.Run(gctx)
	})
	if srv != nil {
		g.Go(func() error {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		watchRemote(gctx, timer, first, logger)
		return nil
	})

	<-gctx.Done()

	var result *multierror.Error
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		result = multierror.Append(result, srv.Shutdown(shutdownCtx))
		cancel()
	}
	result = multierror.Append(result, g.Wait())
	result = multierror.Append(result, timer.Close())
	return result.ErrorOrNil()
}

// watchRemote logs the device's elapsed time, measured from the first tick
// received on first, every remoteInterval.
func watchRemote(ctx context.Context, timer *remote.Timer, first <-chan uint32, logger *slog.Logger) {
	var (
		start   uint32
		started bool
	)

	ticker := time.NewTicker(remoteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ticks := <-first:
			if !started {
				start, started = ticks, true
				logger.Info("first tick report", "ticks", ticks, "rate", timer.TicksPerSecond())
			}
		case <-ticker.C:
			if !started {
				logger.Warn("no tick reports yet", "frame_errors", timer.FrameErrors())
				continue
			}
			logger.Info("device time",
				"ticks", timer.GetTicks(),
				"elapsed_ms", timer.MillisSince(start),
				"reports", timer.Reports(),
				"frame_errors", timer.FrameErrors())
		}
	}
}
