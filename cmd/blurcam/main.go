package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/softlens/blurcam-go/capture"
	"github.com/softlens/blurcam-go/config"
	"github.com/softlens/blurcam-go/engine"
	"github.com/softlens/blurcam-go/engine/renderer"
	"github.com/softlens/blurcam-go/engine/renderer/resource"
	"github.com/softlens/blurcam-go/engine/window"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	synthetic := flag.Bool("synthetic", false, "use a generated test pattern instead of the camera")
	debugMode := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logrus.WithError(err).Fatal("failed to load configuration")
		}
	}
	if *synthetic {
		cfg.Camera.Synthetic = true
	}

	logger := initLogger(cfg, *debugMode)
	log := logger.WithField("component", "blurcam")
	log.WithFields(logrus.Fields{
		"width":  cfg.Width,
		"height": cfg.Height,
		"radius": cfg.Kernel.Radius,
	}).Info("starting camera blur viewer")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("viewer exited with error")
	}
	log.Info("viewer shut down")
}

func run(cfg config.Config, log *logrus.Entry) error {
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	// The camera may negotiate dimensions other than the configured ones;
	// the window and the GPU pipeline follow the source.
	width, height := src.Width(), src.Height()

	win, err := window.NewWindow(
		window.WithTitle("Camera Blur"),
		window.WithWidth(width),
		window.WithHeight(height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	mode, err := cfg.PresentModeValue()
	if err != nil {
		return err
	}
	r, err := renderer.NewRenderer(win, renderer.WithPresentMode(mode))
	if err != nil {
		return err
	}
	defer r.Release()

	if err := r.ConfigureSurface(width, height); err != nil {
		return err
	}

	set, err := resource.Build(r, width, height, cfg.KernelSpec())
	if err != nil {
		return err
	}

	loop := engine.NewLoop(set, src, engine.WithLogger(log.WithField("component", "loop")))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	loop.Start(ctx)
	defer loop.Stop()

	// GLFW calls must stay on the main thread, so the interrupt signal is
	// observed from the update callback rather than a goroutine.
	win.SetUpdateCallback(func() {
		if ctx.Err() != nil {
			win.Close()
			return
		}
		if err := loop.Tick(); err != nil {
			win.Close()
		}
	})
	win.ProcessMessages()

	// A fault surfaces here after the window loop exits; a clean close
	// leaves Err nil.
	return loop.Err()
}

func openSource(cfg config.Config) (capture.Source, error) {
	if !cfg.Camera.Synthetic {
		return capture.NewWebcamSource(cfg.Camera.Device,
			capture.WithRequestedSize(cfg.Width, cfg.Height),
		)
	}

	pattern := capture.PatternUniform
	switch cfg.Camera.Pattern {
	case "impulse":
		pattern = capture.PatternImpulse
	case "gradient":
		pattern = capture.PatternGradient
	}
	return capture.NewSyntheticSource(
		capture.WithSize(cfg.Width, cfg.Height),
		capture.WithPattern(pattern),
	), nil
}

func initLogger(cfg config.Config, debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("debug logging enabled")
	} else {
		logger.SetLevel(cfg.Level())
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}
