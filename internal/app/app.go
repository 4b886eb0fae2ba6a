package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oxprint/oxdash/internal/api"
	"github.com/oxprint/oxdash/internal/config"
	"github.com/oxprint/oxdash/internal/poller"
	"github.com/oxprint/oxdash/internal/state"
	"github.com/oxprint/oxdash/internal/storage"
	"github.com/oxprint/oxdash/internal/ui"
)

// Options configure the oxdash application. Zero values keep the
// configuration file's settings.
type Options struct {
	ConfigPath string
	APIURL     string
	PollEvery  time.Duration
}

// Deps are the components shared by every command.
type Deps struct {
	Config  config.Config
	Storage *storage.Store
	Client  *api.Client
}

// Setup loads configuration, applies overrides and builds the API client.
func Setup(opts Options) (Deps, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return Deps{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}

	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		return Deps{}, fmt.Errorf("open storage: %w", err)
	}

	client, err := api.NewClient(cfg.APIURL, store, cfg.RequestTimeout)
	if err != nil {
		return Deps{}, fmt.Errorf("init api client: %w", err)
	}
	return Deps{Config: cfg, Storage: store, Client: client}, nil
}

// Run boots the dashboard TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	deps, err := Setup(opts)
	if err != nil {
		return err
	}

	closeLog := redirectLog(deps.Config.LogFile)
	defer closeLog()

	p := poller.New(deps.Client, &state.Store{})
	p.Start(ctx, deps.Config.PollInterval)
	defer func() {
		p.Stop()
		p.Wait()
	}()

	log.Printf("polling %s every %s", deps.Client.BaseURL(), deps.Config.PollInterval)

	theme, _ := deps.Storage.Get(storage.ThemeKey)
	return ui.Run(ui.Options{
		Context:   ctx,
		Status:    p,
		Prefs:     deps.Storage,
		ThemeKey:  storage.ThemeKey,
		ThemeName: theme,
		BaseURL:   deps.Client.BaseURL(),
	})
}

// redirectLog sends the standard logger to path so it cannot draw over the
// TUI. When the file cannot be opened logging is discarded.
func redirectLog(path string) func() {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		if f, err := tea.LogToFile(path, "oxdash"); err == nil {
			return func() { _ = f.Close() }
		}
	}
	log.SetOutput(io.Discard)
	return func() {}
}
