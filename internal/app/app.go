package app

import (
	"log/slog"

	"per-app-volume/internal/icon"
	"per-app-volume/internal/mixer"
	"per-app-volume/internal/pactl"
	"per-app-volume/internal/platform/config"
	"per-app-volume/internal/platform/metrics"
)

// App owns the long-lived components of the daemon. Close releases the
// Service's timers.
type App struct {
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Runner  *pactl.ExecRunner
	Client  *pactl.Client
	Index   *icon.Index
	Icons   *icon.Resolver
	Memory  *mixer.InMemoryVolumeStore
	Service *mixer.Service
}

func New(cfg *config.Config, log *slog.Logger) *App {
	runner := pactl.NewExecRunner(cfg.PactlBin, cfg.PactlTimeout)
	client := pactl.NewClient(runner, log)

	index := icon.NewIndex(icon.NewDesktopRegistry(log))
	aliases := icon.NewAliases(icon.DefaultAliases, cfg.IconAliases)
	resolver := icon.NewResolver(cfg.IconAssetDir, aliases, index)

	met := metrics.New()
	memory := mixer.NewInMemoryVolumeStore()
	svc := mixer.NewService(client, client, resolver, memory, mixer.Config{
		Debounce: cfg.Debounce,
		Log:      log,
		Metrics:  met,
	})

	return &App{
		Log:     log,
		Metrics: met,
		Runner:  runner,
		Client:  client,
		Index:   index,
		Icons:   resolver,
		Memory:  memory,
		Service: svc,
	}
}

func (a *App) Close() {
	a.Service.Close()
}
