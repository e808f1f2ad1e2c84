package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flemzord/toolclaw/internal/reload"
)

// WatchConfig reloads the configuration when the file changes or the
// process receives SIGHUP, until ctx is done. It is a no-op when the
// runtime was built from the built-in defaults.
func (rt *Runtime) WatchConfig(ctx context.Context, interval time.Duration) {
	if rt.ConfigPath == "" {
		return
	}
	handler := reload.NewHandler(rt.App, rt.Registry, rt.Logger)
	watcher := reload.NewWatcher(reload.WatcherConfig{
		ConfigPath:   rt.ConfigPath,
		PollInterval: interval,
	})
	watcher.Start(ctx)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	go func() {
		defer watcher.Stop()
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-watcher.Events():
				rt.reload(ctx, handler, "file changed")
			case <-hup:
				rt.reload(ctx, handler, "SIGHUP")
			}
		}
	}()
}

func (rt *Runtime) reload(ctx context.Context, h *reload.Handler, trigger string) {
	rt.Logger.Info("reloading configuration", "trigger", trigger, "path", rt.ConfigPath)
	if err := h.HandleReload(ctx, rt.ConfigPath); err != nil {
		rt.Logger.Error("configuration reload failed", "error", err)
	}
}
