package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()
	w := NewWatcher(WatcherConfig{ConfigPath: path, PollInterval: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	// Let the first poll read the initial digest.
	time.Sleep(60 * time.Millisecond)
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestWatcher_DetectsContentChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "toolclaw.yaml")
	writeFile(t, path, "initial")
	w := startWatcher(t, path)

	writeFile(t, path, "modified")

	select {
	case evt := <-w.Events():
		if evt.ConfigPath != path {
			t.Errorf("got config path %q, want %q", evt.ConfigPath, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_IgnoresTouch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "toolclaw.yaml")
	writeFile(t, path, "same")
	w := startWatcher(t, path)

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	writeFile(t, path, "same")

	select {
	case evt := <-w.Events():
		t.Errorf("unexpected event for unchanged content: %+v", evt)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopAfterCancel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "toolclaw.yaml")
	writeFile(t, path, "data")

	w := NewWatcher(WatcherConfig{ConfigPath: path, PollInterval: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	t.Parallel()

	w := NewWatcher(WatcherConfig{ConfigPath: "/any/path"})

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop before Start deadlocked")
	}
}

func TestWatcher_MissingFile(t *testing.T) {
	t.Parallel()

	w := startWatcher(t, "/nonexistent/toolclaw.yaml")

	select {
	case evt := <-w.Events():
		t.Errorf("unexpected event: %+v", evt)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherConfig_DefaultInterval(t *testing.T) {
	t.Parallel()

	if got := (WatcherConfig{}).pollIntervalOrDefault(); got != defaultPollInterval {
		t.Errorf("interval = %v, want %v", got, defaultPollInterval)
	}
}
