package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/fieldrules/pkg/logger"
)

// DefaultReloadDelay is the quiet period the Watcher waits after the last
// file event before reloading.
const DefaultReloadDelay = 100 * time.Millisecond

// Watcher reloads a Dictionary from a DirectoryAdapter whenever a dictionary
// file in that directory changes. Each successful reload notifies the
// dictionary's subscriptions so rendered messages can be regenerated.
type Watcher struct {
	dict    *Dictionary
	adapter *DirectoryAdapter
	parser  Parser
	delay   time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the adapter's directory.
func NewWatcher(dict *Dictionary, parser Parser, dir string, delay time.Duration, log *slog.Logger) *Watcher {
	if delay <= 0 {
		delay = DefaultReloadDelay
	}
	if log == nil {
		log = dict.logger
	}
	return &Watcher{
		dict:    dict,
		adapter: NewDirectoryAdapter(parser, dir),
		parser:  parser,
		delay:   delay,
		logger:  log.With(logger.Component("i18n.watcher")),
	}
}

// Watch blocks until ctx is cancelled. Reload failures are logged and the
// previous dictionary content stays active.
func (w *Watcher) Watch(ctx context.Context) error {
	if w.adapter == nil {
		return ErrNilAdapter
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWatcherRunning
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(ErrFailedToStartWatcher, err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.adapter.Path()); err != nil {
		return errors.Join(ErrFailedToStartWatcher, fmt.Errorf("watch '%s': %w", w.adapter.Path(), err))
	}

	w.logger.InfoContext(ctx, "dictionary watcher started",
		slog.String("path", w.adapter.Path()),
		logger.Duration(w.delay),
	)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "dictionary watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("%w: events channel closed", ErrFailedToStartWatcher)
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.DebugContext(ctx, "dictionary file changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := w.dict.Load(ctx, w.adapter); err != nil {
				w.logger.ErrorContext(ctx, "dictionary reload failed", logger.Error(err))
				continue
			}
			w.logger.InfoContext(ctx, "dictionary reloaded")

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("%w: errors channel closed", ErrFailedToStartWatcher)
			}
			w.logger.ErrorContext(ctx, "dictionary watcher error", logger.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.parser.SupportsFileExtension(filepath.Ext(base))
}
