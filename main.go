package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/push-center/internal/alert"
	"github.com/nhle/push-center/internal/api"
	"github.com/nhle/push-center/internal/app"
	"github.com/nhle/push-center/internal/credential"
	"github.com/nhle/push-center/internal/ingress"
	"github.com/nhle/push-center/internal/keys"
	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/navigator"
	"github.com/nhle/push-center/internal/router"
	"github.com/nhle/push-center/internal/session"
	"github.com/nhle/push-center/internal/store"
	appsync "github.com/nhle/push-center/internal/sync"
	"github.com/nhle/push-center/internal/transport"
	"github.com/nhle/push-center/internal/ui/inbox"
)

// logAlerter surfaces router errors through the log; the terminal app has
// no modal dialog surface.
type logAlerter struct {
	logger *zap.Logger
}

func (a logAlerter) ShowError(title, message string) {
	a.logger.Error("user alert",
		zap.String("title", title),
		zap.String("message", message),
	)
}

func main() {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	mirror, err := openMirror(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening durable store: %v\n", err)
		os.Exit(1)
	}
	defer mirror.Close()

	in := store.NewInbox(mirror, cfg.Store.Capacity)

	ttl := time.Duration(cfg.Store.MirrorTTLDays) * 24 * time.Hour
	if removed, err := in.SweepExpired(ctx, ttl); err != nil {
		logger.Warn("sweeping expired mirror entries", zap.Error(err))
	} else if removed > 0 {
		logger.Info("swept expired mirror entries", zap.Int("removed", removed))
	}

	ring, err := credential.Open()
	if err != nil {
		// Fall back to the key-value store for the token.
		logger.Warn("system keyring unavailable", zap.Error(err))
		ring = nil
	}
	sess := session.New(mirror, ring)

	if _, err := sess.EnsureDeviceID(ctx); err != nil {
		logger.Warn("ensuring device id", zap.Error(err))
	}

	backend := api.NewClient(cfg.API.BaseURL, cfg.API.ChatBaseURL, sess)

	bridge := transport.NewBridge()
	presenter := alert.NewLogPresenter(logger)
	nav := navigator.NewLogged(logger)

	channel := alert.Channel{
		ID:          cfg.Alert.ChannelID,
		Name:        cfg.Alert.ChannelName,
		Description: "Default notification channel",
		Importance:  alert.ImportanceHigh,
	}

	listener := ingress.NewListener(in, presenter, bridge, sess, channel, logger)
	clickRouter := router.New(in, backend, nav, sess, logAlerter{logger: logger}, logger)
	runner := appsync.New(listener, clickRouter, bridge, presenter, logger)

	k := keys.DefaultKeyMap()
	root := app.New(inbox.New(in, k, 80, 22), runner, clickRouter, k)

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "running program: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds a production zap logger writing to the given file.
// Stdout belongs to the TUI.
func newLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}
	return zapCfg.Build()
}

// openMirror opens the configured durable mirror backend.
func openMirror(ctx context.Context, cfg *model.AppConfig) (store.KeyValue, error) {
	ttl := time.Duration(cfg.Store.MirrorTTLDays) * 24 * time.Hour

	switch cfg.Store.Mirror {
	case "redis":
		return store.NewRedisKV(ctx, cfg.Store.RedisAddr, ttl)
	default:
		return store.NewSQLiteKV(cfg.Store.DBPath)
	}
}
