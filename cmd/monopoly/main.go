package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thraizz/nfc-monopoly-go/internal/config"
	"github.com/thraizz/nfc-monopoly-go/internal/game"
	"github.com/thraizz/nfc-monopoly-go/internal/session"
	"github.com/thraizz/nfc-monopoly-go/internal/storage"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	scriptPath = flag.String("script", "-", "input script, - for stdin")
	resume     = flag.Bool("resume", false, "resume the most recent unfinished save")
	pollEvery  = flag.Duration("poll", 50*time.Millisecond, "poll loop interval")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting monopoly board",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("storage", cfg.Storage.Driver),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	target := cfg.Storage.Path
	if cfg.Storage.Driver == config.DriverPostgres {
		target = cfg.Storage.DSN
	}
	store, err := storage.Open(ctx, cfg.Storage.Driver, target)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}

	opts := []session.Option{session.WithAutosave(cfg.Session.Autosave)}
	if cfg.Replay.Enabled {
		opts = append(opts, session.WithReplay(game.NewReplayRecorder(logger, cfg.Replay.Dir)))
	}
	if cfg.Game.Seed != 0 {
		opts = append(opts, session.WithEngineOptions(game.WithSeed(cfg.Game.Seed)))
	}
	manager := session.NewManager(store, cfg.Game.Settings(), logger, opts...)

	var sess *session.Session
	if *resume {
		sess, err = manager.ResumeLatest(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			logger.Info("no unfinished save, starting a new game")
			sess, err = manager.Create()
		}
	} else {
		sess, err = manager.Create()
	}
	if err != nil {
		logger.Fatal("failed to start session", zap.Error(err))
	}

	input, closeInput, err := openScript(*scriptPath)
	if err != nil {
		logger.Fatal("failed to open script", zap.Error(err))
	}
	defer closeInput()

	runErr := run(ctx, manager, sess, streamScript(ctx, input, logger), os.Stdout, logger, *pollEvery)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := manager.Close(shutdownCtx); err != nil {
		logger.Error("failed to close sessions", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("board stopped", zap.Error(runErr))
		os.Exit(1)
	}
	logger.Info("board stopped")
}

func openScript(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// run is the board's poll loop: one script command per poll when no wait is
// pending, then a timer tick and a redraw if anything changed. It returns
// when the script ends, a quit command is read or ctx is cancelled.
func run(ctx context.Context, m *session.Manager, sess *session.Session, cmds <-chan command, out io.Writer, logger *zap.Logger, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var waitUntil time.Time
	draw := func(v game.View) { render(out, v) }

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if now.After(waitUntil) {
				select {
				case cmd, ok := <-cmds:
					if !ok {
						sess.Render(draw)
						return nil
					}
					done, err := execute(ctx, m, sess, cmd, logger)
					if err != nil {
						return err
					}
					if done {
						sess.Render(draw)
						return nil
					}
					if cmd.wait > 0 {
						waitUntil = now.Add(cmd.wait)
					}
				default:
				}
			}
			if err := m.Tick(ctx); err != nil {
				return err
			}
			sess.Render(draw)
		}
	}
}

// execute applies one command. Rejected inputs are logged and play goes on;
// only save failures stop the loop.
func execute(ctx context.Context, m *session.Manager, sess *session.Session, cmd command, logger *zap.Logger) (bool, error) {
	var err error
	switch {
	case cmd.quit:
		return true, nil
	case cmd.save:
		err = m.Save(ctx, sess.ID)
	case cmd.input != nil:
		err = m.HandleInput(ctx, sess.ID, cmd.input)
	case cmd.action != nil:
		err = m.Do(ctx, sess.ID, cmd.action)
	}
	if err == nil {
		return false, nil
	}
	if errors.Is(err, session.ErrSaveFailed) {
		return false, err
	}
	logger.Warn("input rejected", zap.Int("line", cmd.line), zap.Error(err))
	return false, nil
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
