package watcher

import (
	"fmt"
	"log/slog"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// New creates the file watcher selected by cfg.Mode
func New(cfg entities.WatcherConfig, logger *slog.Logger) (ports.FileWatcher, error) {
	switch mode := cfg.GetMode(); mode {
	case entities.WatchModePoll:
		return NewPollingWatcher(cfg.GetInterval(), cfg.GetDebounce(), logger), nil
	case entities.WatchModeNotify:
		return NewNotifyWatcher(cfg.GetDebounce(), logger)
	default:
		return nil, fmt.Errorf("unknown watch mode: %s", mode)
	}
}
