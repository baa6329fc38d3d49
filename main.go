package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/urfave/cli"

	"github.com/df07/go-progressive-gltracer/pkg/camera"
	"github.com/df07/go-progressive-gltracer/pkg/config"
	"github.com/df07/go-progressive-gltracer/pkg/core"
	"github.com/df07/go-progressive-gltracer/pkg/glview"
	"github.com/df07/go-progressive-gltracer/pkg/input"
	"github.com/df07/go-progressive-gltracer/pkg/renderer"
	"github.com/df07/go-progressive-gltracer/pkg/shaders"
	"github.com/df07/go-progressive-gltracer/web/server"
)

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var configFlags = []cli.Flag{
	cli.StringFlag{Name: "config, c", Usage: "TOML or YAML config file"},
	cli.IntFlag{Name: "width", Usage: "window width"},
	cli.IntFlag{Name: "height", Usage: "window height"},
	cli.IntFlag{Name: "supersample", Usage: "offscreen target scale factor"},
	cli.IntFlag{Name: "k", Usage: "initial bounce depth"},
	cli.IntFlag{Name: "nsamples", Usage: "initial samples per pixel per frame"},
	cli.Float64Flag{Name: "aperture", Usage: "lens diameter"},
	cli.Float64Flag{Name: "fov", Usage: "vertical field of view in degrees"},
	cli.Int64Flag{Name: "seed", Usage: "random seed, 0 for time based"},
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "gltracer"
	app.Usage = "progressive GPU path tracer with a fly-through camera"
	app.Version = "0.1.0"
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
		cli.BoolFlag{Name: "log-json", Usage: "log as JSON lines"},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open the interactive viewer",
			Flags: append([]cli.Flag{
				cli.StringFlag{Name: "shaders", Usage: "directory overriding the embedded shaders"},
				cli.BoolFlag{Name: "watch", Usage: "reload shaders when files in --shaders change"},
				cli.StringFlag{Name: "telemetry", Usage: "serve telemetry on this address, e.g. localhost:8080"},
				cli.StringFlag{Name: "output", Usage: "snapshot directory"},
				cli.BoolFlag{Name: "no-vsync", Usage: "disable vsync"},
			}, configFlags...),
			Action: runViewer,
		},
		{
			Name:   "basis",
			Usage:  "print the starting camera basis as JSON",
			Flags:  configFlags,
			Action: printBasis,
		},
		{
			Name:   "keys",
			Usage:  "list the key bindings",
			Action: printKeys,
		},
	}
	app.Action = runViewer
	return app
}

// newLogger builds the slog-backed logger selected by the global flags
func newLogger(c *cli.Context, w io.Writer) (core.Logger, error) {
	level, err := parseLogLevel(c.GlobalString("log-level"))
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.GlobalBool("log-json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return core.NewSlogLogger(slog.New(handler)), nil
}

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: unknown log level %q", core.ErrConfigurationFault, name)
}

// loadConfig reads the config file if given, then applies flag overrides
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if c.IsSet("width") {
		cfg.Window.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Window.Height = c.Int("height")
	}
	if c.IsSet("supersample") {
		cfg.Window.Supersample = c.Int("supersample")
	}
	if c.IsSet("k") {
		cfg.Render.K = c.Int("k")
	}
	if c.IsSet("nsamples") {
		cfg.Render.Samples = c.Int("nsamples")
	}
	if c.IsSet("aperture") {
		cfg.Camera.Aperture = c.Float64("aperture")
	}
	if c.IsSet("fov") {
		cfg.Camera.VFov = c.Float64("fov")
	}
	if c.IsSet("seed") {
		cfg.Render.Seed = c.Int64("seed")
	}
	if c.IsSet("shaders") {
		cfg.Shaders.Dir = c.String("shaders")
	}
	if c.IsSet("watch") {
		cfg.Shaders.Watch = c.Bool("watch")
	}
	if c.IsSet("telemetry") {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Addr = c.String("telemetry")
	}
	if c.IsSet("output") {
		cfg.Output.Dir = c.String("output")
	}
	if c.IsSet("no-vsync") {
		cfg.Window.VSync = !c.Bool("no-vsync")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// BasisReport is the JSON form of the starting camera basis
type BasisReport struct {
	Origin          mgl64.Vec3 `json:"origin"`
	U               mgl64.Vec3 `json:"u"`
	V               mgl64.Vec3 `json:"v"`
	W               mgl64.Vec3 `json:"w"`
	LowerLeftCorner mgl64.Vec3 `json:"lowerLeftCorner"`
	Horizontal      mgl64.Vec3 `json:"horizontal"`
	Vertical        mgl64.Vec3 `json:"vertical"`
	LensRadius      float64    `json:"lensRadius"`
	FocusDistance   float64    `json:"focusDistance"`
	AspectRatio     float64    `json:"aspectRatio"`
}

func newBasisReport(cfg config.Config) (BasisReport, error) {
	cam := camera.NewFlyCamera(cfg.Fly())
	basis, err := camera.Recompute(cam.Params(cfg.AspectRatio()))
	if err != nil {
		return BasisReport{}, err
	}
	return BasisReport{
		Origin:          basis.Origin,
		U:               basis.U,
		V:               basis.V,
		W:               basis.W,
		LowerLeftCorner: basis.LowerLeftCorner,
		Horizontal:      basis.Horizontal,
		Vertical:        basis.Vertical,
		LensRadius:      basis.LensRadius,
		FocusDistance:   cam.FocusDistance,
		AspectRatio:     cfg.AspectRatio(),
	}, nil
}

func printBasis(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	report, err := newBasisReport(cfg)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printKeys(c *cli.Context) error {
	for _, line := range glview.DefaultKeymap().Describe() {
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

func newSampler(seed int64) *core.RandomSampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return core.NewSeededSampler(seed)
}

func runViewer(c *cli.Context) error {
	logger, err := newLogger(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := input.NewQueue(input.DefaultQueueSize)

	var publisher renderer.StatsPublisher
	if cfg.Telemetry.Enabled {
		hub := server.NewHub(server.DefaultStreamInterval)
		logger = server.NewWebLogger(logger, hub.ConsoleChan())
		srv := server.NewServer(cfg.Telemetry.Addr, hub, queue, logger)
		go hub.Run(ctx)
		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Printf("Telemetry server stopped: %v\n", err)
			}
		}()
		publisher = hub
	}

	window, err := glview.NewWindow(glview.WindowOptions{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	}, queue, logger)
	if err != nil {
		return err
	}
	defer window.Destroy()
	glview.LogInfo(logger)

	viewport := cfg.Viewport()
	pipeline, err := glview.NewPipeline(shaders.NewLoader(cfg.Shaders.Dir), viewport.TargetSize(), window, logger)
	if err != nil {
		return err
	}
	defer pipeline.Delete()

	if cfg.Shaders.Watch {
		watcher, err := shaders.NewWatcher(cfg.Shaders.Dir, queue, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	accum := renderer.NewAccumulationController(cfg.Accumulation(), newSampler(cfg.Render.Seed))
	rc, err := renderer.NewRenderContext(camera.NewFlyCamera(cfg.Fly()), accum, viewport, cfg.LensSteps(), logger)
	if err != nil {
		return err
	}

	loop, err := renderer.NewLoop(renderer.LoopConfig{
		Window:       window,
		Queue:        queue,
		Context:      rc,
		Dispatcher:   renderer.NewDispatcher(),
		Orchestrator: renderer.NewOrchestrator(pipeline, pipeline, window),
		Reloader:     pipeline,
		Snapshotter:  pipeline,
		Resizer:      pipeline,
		Publisher:    publisher,
		OutputDir:    cfg.Output.Dir,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	state := accum.State()
	logger.Printf("Nsamples = %d, K = %d\n", state.SampleCount, state.QualityK)

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Printf("Stopped after %d frames (%d resets)\n", accum.Ticks(), accum.Resets())
	return err
}
