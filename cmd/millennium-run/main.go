// Command millennium-run starts the game: it loads the launch config and the asset
// bundle, opens the window, then runs the logic and render workers until the window
// closes or a worker reports a fatal error.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/millennium-run/config"
	"github.com/Carmen-Shannon/millennium-run/engine"
	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/Carmen-Shannon/millennium-run/engine/assets"
	"github.com/Carmen-Shannon/millennium-run/engine/audio"
	"github.com/Carmen-Shannon/millennium-run/engine/logic"
	"github.com/Carmen-Shannon/millennium-run/engine/message"
	"github.com/Carmen-Shannon/millennium-run/engine/profiler"
	"github.com/Carmen-Shannon/millennium-run/engine/renderer"
	"github.com/Carmen-Shannon/millennium-run/engine/scene"
	"github.com/Carmen-Shannon/millennium-run/engine/window"
	"github.com/Carmen-Shannon/millennium-run/game/gfx"
	"github.com/Carmen-Shannon/millennium-run/game/records"
	"github.com/Carmen-Shannon/millennium-run/game/save"
	"github.com/Carmen-Shannon/millennium-run/game/scenes"
	"github.com/Carmen-Shannon/millennium-run/game/settings"
	"github.com/Carmen-Shannon/millennium-run/game/stage"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	// GLFW must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	code, err := run()
	if err != nil {
		fatal(panicMessage(err), showDialog, os.Stderr)
	}
	os.Exit(code)
}

// panicMessage turns a run error into the title and detail shown to the player.
func panicMessage(err error) apperr.PanicMessage {
	var fe *engine.FatalError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return apperr.PanicMessage{Title: "Millennium Run could not start", Detail: err.Error()}
}

// showDialog opens a native error dialog and blocks until the player dismisses it.
func showDialog(title, detail string) error {
	return zenity.Error(detail, zenity.Title(title), zenity.ErrorIcon)
}

// fatal shows msg through show. The message goes to w as well when no dialog could
// be opened, so a headless launch still reports why it stopped.
func fatal(msg apperr.PanicMessage, show func(title, detail string) error, w io.Writer) {
	err := show(msg.Title, msg.Detail)
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s\n\n%s\n\n(error dialog unavailable: %v)\n", msg.Title, msg.Detail, err)
}

func run() (int, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return 1, err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return 1, fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Assets ───────────────────────────────────────────────────────────
	bundleOpts := []assets.BundleBuilderOption{
		assets.WithLogger(log),
		assets.WithWatch(cfg.Assets.Watch),
	}
	if len(cfg.Assets.Roots) > 0 {
		bundleOpts = append(bundleOpts, assets.WithRoots(cfg.Assets.Roots...))
	}
	if cfg.Assets.KeysDir != "" {
		bundleOpts = append(bundleOpts, assets.WithKeysDir(cfg.Assets.KeysDir))
	}
	if cfg.Assets.Workers > 0 {
		bundleOpts = append(bundleOpts, assets.WithWorkers(cfg.Assets.Workers))
	}
	bundle, err := assets.NewBundle(bundleOpts...)
	if err != nil {
		if errors.Is(err, apperr.InvalidKey) {
			return 1, &engine.FatalError{Message: apperr.PanicMessage{
				Title: "Asset file corruption detection", Detail: err.Error(),
			}}
		}
		return 1, fmt.Errorf("load assets: %w", err)
	}
	defer bundle.Close()

	userSettings, err := loadSettings(bundle, log)
	if err != nil {
		return 1, err
	}
	progress, err := loadSave(bundle, log)
	if err != nil {
		return 1, err
	}
	stages, err := loadStages(bundle)
	if err != nil {
		return 1, err
	}
	quad, err := gfx.LoadShader(bundle)
	if err != nil {
		return 1, fmt.Errorf("load shader: %w", err)
	}

	// ── Window ───────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(userSettings.Title()),
		window.WithSize(userSettings.Resolution.Size()),
		window.WithResolutions(settings.Chain()),
		window.WithFullScreen(userSettings.ScreenMode == settings.FullScreen),
		window.WithLogger(log),
	)
	if err != nil {
		return 1, fmt.Errorf("open window: %w", err)
	}

	// ── Render worker ────────────────────────────────────────────────────
	mode, _ := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	backend, err := renderer.NewWGPUBackend(win.SurfaceDescriptor(), win.Width(), win.Height(), mode, false)
	if err != nil {
		_ = win.Close()
		return 1, fmt.Errorf("create render backend: %w", err)
	}
	fabric := message.NewFabric()
	renderOpts := []renderer.RendererBuilderOption{renderer.WithLogger(log)}
	if d, err := time.ParseDuration(cfg.Renderer.CleanupInterval); err == nil {
		renderOpts = append(renderOpts, renderer.WithCleanupInterval(d))
	}
	if cfg.Renderer.Profiler {
		renderOpts = append(renderOpts, renderer.WithProfiler(profiler.NewProfiler(log.Named("profiler"))))
	}
	render := renderer.NewRenderer(backend, fabric, renderOpts...)

	// ── Audio and records ────────────────────────────────────────────────
	sinkOpts := []audio.SinkBuilderOption{
		audio.WithLogger(log),
		audio.WithVolumes(userSettings.BackgroundVolume, userSettings.EffectVolume),
	}
	if !cfg.Audio.Enabled {
		sinkOpts = append(sinkOpts, audio.WithoutDevice())
	}
	sink := audio.NewSink(sinkOpts...)
	defer sink.Close()

	var history *records.Store
	if cfg.Records.Path != "" {
		history, err = records.Open(ctx, cfg.Records.Path, records.WithLogger(log))
		if err != nil {
			log.Warn("play history disabled", zap.Error(err))
			history = nil
		} else {
			defer history.Close()
		}
	}

	// ── Logic worker ─────────────────────────────────────────────────────
	screen := scenes.NewScreen(quad)
	shared := scene.NewRegistry()
	for _, put := range []error{
		scene.Put(shared, bundle),
		scene.Put(shared, &userSettings),
		scene.Put(shared, &progress),
		scene.Put(shared, stages),
		scene.Put(shared, sink),
		scene.Put(shared, screen),
	} {
		if put != nil {
			return 1, put
		}
	}
	if history != nil {
		if err := scene.Put(shared, history); err != nil {
			return 1, err
		}
	}
	game := logic.NewWorker(fabric, scenes.NewEntry(),
		logic.WithLogger(log),
		logic.WithRenderClient(render.Client()),
		logic.WithRegistry(shared),
	)

	host := engine.NewEngine(win, fabric,
		engine.WithLogger(log),
		engine.WithIntegrity(bundle),
		engine.WithResizer(render),
		engine.WithWorker("logic", game),
		engine.WithWorker("render", render),
	)
	code, err := host.Run(ctx)

	// the logic worker has stopped; the render worker released the GPU on exit
	screen.Close()
	if h, herr := bundle.Get(settings.Path); herr == nil {
		if serr := settings.Store(h, userSettings); serr != nil {
			log.Warn("settings not saved on exit", zap.Error(serr))
		}
	}
	return code, err
}

// newLogger builds the root logger from the launch config.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// loadSettings reads the settings asset. A missing or unreadable file gives the
// defaults; they are written back on exit.
func loadSettings(b *assets.Bundle, log *zap.Logger) (settings.Settings, error) {
	h, err := b.Get(settings.Path)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("settings asset: %w", err)
	}
	st, err := settings.Load(h)
	if err != nil {
		log.Warn("settings unreadable, using defaults", zap.Error(err))
		return settings.Default(), nil
	}
	log.Info("settings loaded", zap.Stringer("language", st.Language),
		zap.Stringer("resolution", st.Resolution), zap.Stringer("screen_mode", st.ScreenMode))
	return st, nil
}

// loadSave reads the progress record. A corrupt save is replaced by a new one
// instead of blocking the game.
func loadSave(b *assets.Bundle, log *zap.Logger) (save.Save, error) {
	h, err := b.Get(save.Path)
	if err != nil {
		return save.Save{}, fmt.Errorf("save asset: %w", err)
	}
	sv, err := save.Load(h)
	if err != nil {
		log.Warn("save unreadable, starting fresh", zap.Error(err))
		return save.Default(), nil
	}
	return sv, nil
}

func loadStages(b *assets.Bundle) (stage.Table, error) {
	h, err := b.Get(stage.Path)
	if err != nil {
		return stage.Table{}, fmt.Errorf("stage asset: %w", err)
	}
	t, err := assets.Read[stage.Table](h, stage.Decoder{})
	if err != nil {
		return stage.Table{}, fmt.Errorf("stage table: %w", err)
	}
	return t, nil
}
