// frame-review - review and transform frames captured by an SoC camera
//  Copyright (C) 2026, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goconfig "github.com/TheCacophonyProject/go-config"
	arg "github.com/alexflint/go-arg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"periph.io/x/periph/host"

	"github.com/TheCacophonyProject/frame-review/events"
	"github.com/TheCacophonyProject/frame-review/export"
	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/hardware/devmem"
	"github.com/TheCacophonyProject/frame-review/hardware/gpio"
	"github.com/TheCacophonyProject/frame-review/hardware/sim"
	"github.com/TheCacophonyProject/frame-review/overlay"
	"github.com/TheCacophonyProject/frame-review/review"
	"github.com/TheCacophonyProject/frame-review/service"
	"github.com/TheCacophonyProject/frame-review/throttle"
)

const simFrameInterval = 40 * time.Millisecond

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	ConfigDir  string `arg:"--device-config-dir" help:"directory of the Cacophony device configuration"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	Verbose    bool   `arg:"-v,--verbose" help:"make logging more verbose"`
	NoDbus     bool   `arg:"--no-dbus" help:"don't start the D-Bus service"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/frame-review.yaml"
	args.ConfigDir = goconfig.DefaultConfigDir
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()

	logger, err := newLogger(args.Timestamps, args.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("running version", zap.String("version", version))
	conf, err := ParseConfigFile(args.ConfigFile, args.ConfigDir)
	if err != nil {
		return err
	}
	logConfig(logger, conf)

	b, err := openBoard(conf, logger)
	if err != nil {
		return err
	}
	defer b.close()

	logger.Info("deleting temp files")
	if err := export.DeleteTempFiles(conf.OutputDir); err != nil {
		return err
	}
	if err := export.DeleteSnapshot(conf.OutputDir); err != nil {
		return err
	}

	eventRecorder := events.New(logger)
	eventRecorder.DeviceName = conf.DeviceName
	defer eventRecorder.Wait()
	fileExporter := export.NewFileExporter(conf.OutputDir, conf.Export, logger)

	opts := review.Options{
		Exporter: throttle.NewThrottledExporter(fileExporter, &conf.Throttler, eventRecorder, logger),
		ExportOn: conf.Export.When,
		Snapshot: func(fb *framebuffer.FrameBuffer) error {
			return export.Snapshot(conf.OutputDir, fb)
		},
		Events: eventRecorder,
		Logger: logger,
	}
	if conf.Overlay {
		opts.Overlay = overlay.New(b.chars)
	}
	w, err := conf.NewWindow()
	if err != nil {
		return err
	}
	opts.Window = w
	reviewer := review.New(b.fb, b.capture, b.controls, opts)

	if !args.NoDbus {
		logger.Info("starting d-bus service")
		if _, err := service.Start(reviewer); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if b.sim != nil {
		go b.sim.Run(ctx, simFrameInterval)
	}

	logger.Info("reviewing frames")
	return reviewer.Run(ctx, conf.PollInterval)
}

func newLogger(timestamps, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.Sampling = nil
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if !timestamps {
		config.EncoderConfig.TimeKey = "" // Removes the timestamp field
	}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func logConfig(logger *zap.Logger, conf *Config) {
	logger.Info("backend",
		zap.String("backend", conf.Backend),
		zap.String("inputs", conf.Inputs),
		zap.Duration("poll-interval", conf.PollInterval),
	)
	logger.Info("frame geometry",
		zap.Int("width", conf.Frame.Width),
		zap.Int("height", conf.Frame.Height),
		zap.Int("stride", conf.Frame.Stride),
	)
	logger.Info("export",
		zap.String("output-dir", conf.OutputDir),
		zap.String("when", conf.Export.When),
		zap.Bool("throttled", conf.Throttler.ApplyThrottling),
	)
	if conf.DeviceName != "" {
		logger.Info("device", zap.String("name", conf.DeviceName))
	}
	if conf.WindowStart != "" {
		logger.Info("capture window",
			zap.String("start", conf.WindowStart),
			zap.String("end", conf.WindowEnd),
			zap.Float64("latitude", conf.Location.Latitude),
			zap.Float64("longitude", conf.Location.Longitude),
		)
	} else {
		logger.Info("no capture window")
	}
}

// board bundles whichever hardware the config selected.
type board struct {
	fb       *framebuffer.FrameBuffer
	chars    *overlay.CharBuffer
	capture  review.Capture
	controls review.Controls
	sim      *sim.Board
	close    func() error
}

func openBoard(conf *Config, logger *zap.Logger) (*board, error) {
	b := &board{close: func() error { return nil }}
	switch conf.Backend {
	case backendDevmem:
		dev, err := devmem.Open(conf.Devmem, conf.Frame.Width, conf.Frame.Height, conf.Frame.Stride)
		if err != nil {
			return nil, err
		}
		b.fb, b.chars, b.capture, b.controls = dev.FrameBuffer(), dev.CharBuffer(), dev, dev
		b.close = dev.Close
	case backendSim:
		s, err := sim.New(conf.Frame.Width, conf.Frame.Height, conf.Frame.Stride)
		if err != nil {
			return nil, err
		}
		b.fb, b.chars, b.capture, b.controls = s.FrameBuffer(), s.CharBuffer(), s, s
		b.sim = s
		logger.Info("using simulated camera")
	}

	if conf.Inputs == inputsGPIO {
		logger.Info("host initialisation")
		if _, err := host.Init(); err != nil {
			b.close()
			return nil, err
		}
		in, err := gpio.Open(conf.GPIO)
		if err != nil {
			b.close()
			return nil, err
		}
		b.controls = in
	}
	return b, nil
}
