package configwatcher

import (
	"context"
	"path/filepath"
	"skillquest_backend/internal/config"
	"skillquest_backend/pkg/logger"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigReloader 配置文件变更后收到重新加载的配置
type ConfigReloader func(cfg *config.Config)

const defaultDebounce = time.Second

type Watcher struct {
	// 配置文件完整路径，如 configs/config.yaml
	Path      string
	Debounce  time.Duration
	reloaders []ConfigReloader
}

func New(path string, reloaders ...ConfigReloader) *Watcher {
	return &Watcher{Path: path, Debounce: defaultDebounce, reloaders: reloaders}
}

// Run 监听配置所在目录直到 ctx 结束；编辑器常以 rename 方式保存，所以监听目录而不是文件
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// 防抖
				timer.Reset(w.Debounce)
			}
		case <-timer.C:
			newCfg, err := config.LoadConfig(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", absPath))
			for _, reload := range w.reloaders {
				reload(newCfg)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
