package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/timeweave/rewind/internal/config"
	"github.com/timeweave/rewind/internal/core/timeline"
	"github.com/timeweave/rewind/internal/data"
	"github.com/timeweave/rewind/internal/debugview"
	"github.com/timeweave/rewind/internal/level"
	"github.com/timeweave/rewind/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/width"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var printer = message.NewPrinter(language.English)

func printBanner(levelName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              rewindd  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        level time · record · rewind       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mlevel:\033[0m %s\n\n", levelName)
}

// displayWidth counts terminal columns; wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := printer.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/rewind.toml"
	if p := os.Getenv("REWIND_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Level definition and script
	def, err := data.LoadLevel(cfg.Level.Definition)
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}
	printBanner(def.Name)

	printSection("level data")
	printStat("entities", def.Count())
	printStat("flags", def.FlagCount)

	engine, err := scripting.NewEngine(cfg.Level.Script, log)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	defer engine.Close()
	if engine.HasHook() {
		printOK("level script loaded")
	}
	fmt.Println()

	// 4. Debug view
	var hub *debugview.Hub
	opts := level.Options{
		RewindSpeed:            cfg.Time.RewindSpeed,
		TransformInterpolation: interpolation(cfg.Time.TransformInterpolation),
		Script:                 engine,
		SnapshotInterval:       cfg.Debug.SnapshotInterval,
	}
	if cfg.Debug.Enabled {
		hub = debugview.NewHub(log)
		opts.Publisher = hub
	}

	// 5. Build the level
	lvl, err := level.New(def, opts, log)
	if err != nil {
		return fmt.Errorf("build level: %w", err)
	}

	printSection("timeline")
	printStat("systems", lvl.Runner.Len())
	printStat("tracked histories", len(lvl.Manager.Snapshot().Histories))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if hub != nil {
		srv := debugview.NewServer(cfg.Debug.BindAddress, hub, cfg.Debug.WriteTimeout, log)
		g.Go(func() error { return srv.Run(ctx) })
	}

	printSection("ready")
	if hub != nil {
		printReady(fmt.Sprintf("debug view on http://%s/debug/time", cfg.Debug.BindAddress))
	}
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Level.TickRate))
	fmt.Println()

	g.Go(func() error { return gameLoop(ctx, lvl, cfg.Level.TickRate, log) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("stopped")
	return nil
}

// gameLoop ticks the level at a fixed rate until ctx is done. SIGHUP reloads
// the level. The level is touched from this goroutine only.
func gameLoop(ctx context.Context, lvl *level.Level, rate time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ticker.C:
			lvl.Tick(rate)
		case <-hup:
			lvl.RequestReload()
		case <-ctx.Done():
			log.Info("shutdown signal received",
				zap.Stringer("level_time", lvl.Manager.LevelTime()),
				zap.Uint64("ticks", lvl.Manager.Ticks()),
			)
			return ctx.Err()
		}
	}
}

func interpolation(mode string) timeline.Interpolation {
	if mode == "linear" {
		return timeline.InterpolationLinear
	}
	return timeline.InterpolationNone
}

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
