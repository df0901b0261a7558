package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/waterforcectl/internal/config"
	"codeberg.org/mutker/waterforcectl/internal/errors"
	"codeberg.org/mutker/waterforcectl/internal/hidraw"
	"codeberg.org/mutker/waterforcectl/internal/logger"
	"codeberg.org/mutker/waterforcectl/internal/pid"
	"codeberg.org/mutker/waterforcectl/internal/telemetry"
	"codeberg.org/mutker/waterforcectl/internal/waterforce"
)

// Supported coolers, probed in order.
var products = []uint16{
	waterforce.ProductWaterforceX,
	waterforce.ProductWaterforceX360G,
	waterforce.ProductWaterforceEX360,
}

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer pid.Remove()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
}

func run(ctx context.Context) error {
	transport, product, err := openCooler()
	if err != nil {
		return err
	}

	device := waterforce.NewDevice(transport, product)
	defer device.Close()

	go pump(ctx, transport, device)

	if err := device.Init(); err != nil {
		return err
	}

	logger.Info().
		Str("device", transport.Path()).
		Int("firmware", device.FirmwareVersion()).
		Int("max_speed", device.Profile().MaxSpeed).
		Msg("Cooler attached")

	if !cfg.Monitor {
		if err := applyTargets(device); err != nil {
			return err
		}
	}

	var collector telemetry.Collector
	if cfg.Telemetry {
		collector, err = telemetry.NewService(telemetry.Config{DBPath: cfg.TelemetryDB})
		if err != nil {
			return err
		}
		defer collector.Close()
	}

	return loop(ctx, device, collector)
}

func openCooler() (*hidraw.Device, uint16, error) {
	errFactory := errors.New()

	for _, product := range products {
		transport, err := hidraw.Open(waterforce.VendorGigabyte, product)
		if err == nil {
			return transport, product, nil
		}
		if !errors.HasCode(err, hidraw.ErrDeviceNotFound) {
			return nil, 0, err
		}
	}

	return nil, 0, errFactory.WithMessage(errors.ErrResourceNotFound, "no Waterforce cooler attached")
}

// pump feeds inbound reports from the transport to the device engine.
func pump(ctx context.Context, transport *hidraw.Device, device *waterforce.Device) {
	buf := make([]byte, waterforce.ReportLength)
	for {
		n, err := transport.Read(buf)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error().Err(err).Msg("report read failed")
			}
			return
		}
		device.HandleReport(buf[:n])
	}
}

func applyTargets(device *waterforce.Device) error {
	if cfg.FanSpeed > 0 {
		if err := device.SetTargetSpeed(waterforce.ChannelFan, cfg.FanSpeed); err != nil {
			return err
		}
		logger.Info().Int("rpm", cfg.FanSpeed).Msg("Applied fan speed target")
	}

	if cfg.PumpSpeed > 0 {
		if err := device.SetTargetSpeed(waterforce.ChannelPump, cfg.PumpSpeed); err != nil {
			return err
		}
		logger.Info().Int("rpm", cfg.PumpSpeed).Msg("Applied pump speed target")
	}

	if cfg.CPUTemp >= 0 {
		if err := device.SetTargetTemperature(cfg.CPUTemp); err != nil {
			return err
		}
		logger.Info().Int("temp", cfg.CPUTemp).Msg("Applied CPU temperature")
	}

	return nil
}

func loop(ctx context.Context, device *waterforce.Device, collector telemetry.Collector) error {
	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Exiting...")
			return nil
		case <-ticker.C:
			status, err := device.Status()
			if err != nil {
				if errors.HasCode(err, waterforce.ErrNoData) {
					logger.Warn().Msg("No status reply from cooler")
					continue
				}
				return err
			}

			logStatus(status)

			if collector != nil {
				snapshot := &telemetry.Snapshot{
					Timestamp:       time.Now(),
					CoolantTemp:     status.CoolantTemp,
					FanSpeed:        status.FanSpeed,
					PumpSpeed:       status.PumpSpeed,
					FanDuty:         status.FanDuty,
					PumpDuty:        status.PumpDuty,
					FirmwareVersion: device.FirmwareVersion(),
				}
				if err := collector.Record(ctx, snapshot); err != nil {
					logger.Error().Err(err).Msg("failed to record telemetry")
				}
			}
		}
	}
}

func logStatus(status waterforce.Status) {
	logger.Info().
		Int("coolant_temp", status.CoolantTemp).
		Int("fan_speed", status.FanSpeed).
		Int("pump_speed", status.PumpSpeed).
		Int("fan_duty", status.FanDuty).
		Int("pump_duty", status.PumpDuty).
		Msg("")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
