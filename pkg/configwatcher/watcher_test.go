package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"skillquest_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
database:
  driver: sqlite
storage:
  type: minio
gamification:
  step_pass_xp: %d
`

func writeConfig(t *testing.T, path string, stepXP int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(baseConfig, stepXP)), 0o644))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, 50)

	got := make(chan *config.Config, 4)
	w := New(path, func(cfg *config.Config) { got <- cfg })
	w.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// 等 watcher 注册完成
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, path, 80)

	select {
	case cfg := <-got:
		assert.Equal(t, 80, cfg.Gamification.StepPassXP)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
