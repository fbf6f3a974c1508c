package feed

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"ladle/model"
)

type EntryReader interface {
	Unread() ([]Entry, error)
	MarkRead(entryID int64) error
}

type Importer interface {
	Import(ctx context.Context, url string) (*model.Import, error)
}

// Watcher polls the feed reader and runs every unread entry through the
// importer. Entries are marked read whether the import succeeded or not, a
// bad URL should not be retried on every sweep.
type Watcher struct {
	entries  EntryReader
	importer Importer
	interval time.Duration
	logger   *slog.Logger
}

func NewWatcher(entries EntryReader, importer Importer, interval time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		entries:  entries,
		importer: importer,
		interval: interval,
		logger:   logger.With("package", "feed"),
	}
}

func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("feed watcher started", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Sweep(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("feed watcher stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *Watcher) Sweep(ctx context.Context) {
	entries, err := w.entries.Unread()
	if err != nil {
		w.logger.Error("failed to fetch unread entries", "error", err)
		return
	}

	for _, entry := range entries {
		imp, err := w.importer.Import(ctx, entry.URL)
		if err != nil {
			w.logger.Error("failed to import entry", "url", entry.URL, "error", err)
			continue
		}
		w.logger.Info("imported feed entry", "url", entry.URL, "status", string(imp.Status))

		if err := w.entries.MarkRead(entry.EntryID); err != nil {
			w.logger.Error("failed to mark entry as read", "url", entry.URL, "error", err)
		}
	}
}
