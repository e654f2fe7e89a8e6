package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/cubeview"
	"github.com/phanxgames/cubeview/control"
)

func main() {
	var configPath, images, addr, scriptPath, exportPath string
	var headless, debug bool
	var ticks int
	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&images, "images", "", "Comma-separated face images (F,R,U,B,L,D); files, URLs or data: URLs")
	flag.StringVar(&addr, "addr", "", "Address of the remote control server (empty disables it)")
	flag.StringVar(&scriptPath, "script", "", "Path to a YAML or JSON script to play")
	flag.StringVar(&exportPath, "export", "", "Write the cube as .gltf or .glb and exit")
	flag.BoolVar(&headless, "headless", false, "Run without a window")
	flag.BoolVar(&debug, "debug", false, "Log per-frame stats")
	flag.IntVar(&ticks, "ticks", 0, "Stop a headless run after this many updates (0: no limit)")
	flag.Parse()

	if err := run(configPath, images, addr, scriptPath, exportPath, headless, debug, ticks); err != nil {
		slog.Error("cubeview", "err", err)
		os.Exit(1)
	}
}

func run(configPath, images, addr, scriptPath, exportPath string, headless, debug bool, ticks int) error {
	cfg := cubeview.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = cubeview.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if images != "" {
		cfg.Images = strings.Split(images, ",")
	}
	if addr != "" {
		cfg.ControlAddr = addr
	}
	cfg.Debug = cfg.Debug || debug
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var script *cubeview.ScriptRunner
	if scriptPath != "" {
		var err error
		if script, err = cubeview.LoadScript(scriptPath); err != nil {
			return err
		}
	}

	bar := progressbar.Default(int64(cubeview.MaxImageSources), "loading images")
	progress := func(done, total int) { _ = bar.Set(done) }

	if exportPath != "" || headless {
		return runHeadless(ctx, cfg, logger, progress, script, exportPath, ticks)
	}

	return cubeview.Run(ctx, cfg, cubeview.RunOptions{
		Logger:   logger,
		Progress: progress,
		Setup: func(g *cubeview.Game) error {
			scene := g.Viewer().Scene
			if script != nil {
				scene.SetScript(script)
				g.QuitWhenScriptDone = true
			}
			if cfg.ControlAddr != "" {
				srv := control.New(scene, logger)
				go func() {
					if err := srv.ListenAndServe(ctx, cfg.ControlAddr); err != nil {
						logger.Error("control server", "err", err)
					}
				}()
			}
			return nil
		},
	})
}

func runHeadless(ctx context.Context, cfg cubeview.Config, logger *slog.Logger, progress func(int, int),
	script *cubeview.ScriptRunner, exportPath string, ticks int) error {
	imgs, err := cubeview.LoadConfigImages(ctx, cfg, cubeview.LoadOptions{Logger: logger, Progress: progress})
	if err != nil {
		return err
	}
	rec := cubeview.NewRecorder(cfg.Width, cfg.Height)
	rec.Limit = 2
	v, err := cubeview.NewViewer(rec, cfg, imgs, logger)
	if err != nil {
		return err
	}
	defer v.Scene.Close()

	if exportPath != "" {
		return export(v.Scene, exportPath)
	}

	// The server stops when the scene loop ends.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	if cfg.ControlAddr != "" {
		srv := control.New(v.Scene, logger)
		g.Go(func() error { return srv.ListenAndServe(gctx, cfg.ControlAddr) })
	}
	g.Go(func() error {
		defer cancel()
		return cubeview.RunHeadless(gctx, v, rec, cubeview.HeadlessOptions{Script: script, MaxTicks: ticks})
	})
	return g.Wait()
}

func export(scene *cubeview.Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	binary := strings.EqualFold(filepath.Ext(path), ".glb")
	if err := scene.ExportGLTF(f, binary); err != nil {
		f.Close()
		return err
	}
	slog.Info("exported", "path", path, "drawables", len(scene.Drawables()))
	return f.Close()
}
