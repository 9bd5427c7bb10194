package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"syscall"
	"time"

	"github.com/soar/padmux/internal/config"
	"github.com/soar/padmux/internal/console"
	"github.com/soar/padmux/internal/hub"
	"github.com/soar/padmux/internal/input"
	padlog "github.com/soar/padmux/internal/log"
	"github.com/soar/padmux/internal/platform"
	"github.com/soar/padmux/internal/platform/sdlinput"
	"github.com/soar/padmux/internal/runner"
	"github.com/soar/padmux/internal/server"
	"github.com/soar/padmux/internal/tray"

	"github.com/spf13/pflag"
)

// os.Interrupt is Ctrl+C on every platform; SIGTERM covers service managers.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "padmux:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("padmux", pflag.ContinueOnError)
	config.Flags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if path, _ := flags.GetString("init-config"); path != "" {
		if err := config.WriteSample(path); err != nil {
			return err
		}
		fmt.Println("wrote sample configuration to", path)
		return nil
	}

	interactive := console.Interactive()

	loader, err := config.NewLoader(flags, nil)
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger, logFile, err := padlog.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	if cfg.File != "" {
		logger.Info("configuration loaded", "file", cfg.File)
	}

	names := input.ContextFrom(cfg.Engine)
	profiles, assignments, err := input.LoadProfiles(cfg.Document, names)
	if err != nil {
		if cfg.Strict {
			return err
		}
		logger.Warn("some profiles were skipped", "error", err)
	}
	logger.Info("profiles loaded", "count", profiles.Len())

	remote := platform.NewRemote()
	remote.SetPullMouse(!cfg.PushMouse)
	remoteLog := padlog.Component(logger, "remote")
	remote.OnDrop(func() {
		remoteLog.Warn("remote input queue full, dropping oldest motion event")
	})
	joysticks := sdlinput.New(logger)

	q := &input.Queue{}
	handler := input.NewHandler(input.Options{
		Joysticks:    joysticks,
		Keyboard:     remote,
		Mouse:        remote,
		KeyboardName: "remote keyboard",
		MouseName:    "remote mouse",
		PushGamepad:  cfg.PushGamepad,
		PushMouse:    cfg.PushMouse,
		PushKeyboard: cfg.PushKeyboard,
		Continuous:   cfg.Continuous,
		Profiles:     profiles,
		Assignments:  assignments,
		Logger:       logger,
	}, q)

	interrupted := make(chan struct{})
	rearm := console.OnInterrupt(interrupted)

	loop := runner.New(handler, q, runner.Options{
		Interval: cfg.FrameInterval(),
		Pumps:    []platform.Pump{joysticks, remote},
		Start: func() error {
			if err := joysticks.Init(); err != nil {
				return err
			}
			rearm()
			return nil
		},
		Stop:   joysticks.Quit,
		Logger: logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub(logger)
	go h.Run(ctx)

	broadcaster := hub.NewBroadcaster(h, loop.Frames(), names)
	go broadcaster.Run(ctx)

	// apply swaps in a reloaded configuration. Only profiles, bindings and
	// players take effect live; everything else needs a restart.
	apply := func(next *config.Config, err error) {
		if err != nil {
			logger.Error("reload failed, keeping current profiles", "error", err)
			return
		}
		nextNames := input.ContextFrom(next.Engine)
		set, a, err := input.LoadProfiles(next.Document, nextNames)
		if err != nil {
			if next.Strict {
				logger.Error("reload rejected", "error", err)
				return
			}
			logger.Warn("some profiles were skipped", "error", err)
		}
		broadcaster.SetNames(nextNames)
		loop.Reload(runner.Reload{Profiles: set, Assignments: a})
		if !reflect.DeepEqual(next.Settings, cfg.Settings) {
			logger.Warn("settings changed, restart to apply them")
		}
		logger.Info("profiles reloaded", "count", set.Len())
	}
	loader.Watch(config.DefaultDebounce, apply)

	frontend, err := frontendFS()
	if err != nil {
		return err
	}
	srv, err := server.New(h, broadcaster, remote, frontend, cfg.Listen, logger)
	if err != nil {
		return err
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	loopErrCh := make(chan error, 1)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil {
			loopErrCh <- err
		}
	}()

	url := monitorURL(cfg.Listen)
	logger.Info("padmux started", "url", url)

	trayExit := make(chan struct{})
	var t *tray.Tray
	if cfg.Tray || !interactive {
		var once sync.Once
		t = tray.New(url, tray.Actions{
			Reload: func() { apply(loader.Reload()) },
			Exit:   func() { once.Do(func() { close(trayExit) }) },
		}, logger)
		go t.Run()
	} else {
		logger.Info("press Ctrl+C to exit")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-interrupted:
		logger.Info("shutting down", "signal", "console interrupt")
	case <-trayExit:
		logger.Info("shutdown requested from tray")
	case runErr = <-serverErrCh:
		logger.Error("http server failed", "error", runErr)
	case runErr = <-loopErrCh:
		logger.Error("frame loop failed", "error", runErr)
	}

	cancel()
	<-loopDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	if t != nil {
		t.Quit()
	}

	logger.Info("padmux stopped")
	return runErr
}

// monitorURL turns a listen address into a URL a local browser can open.
func monitorURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen + "/"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
