// Package watch triggers entity syncs when a new export lands in the inbox.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driving"
	"github.com/archibald-labs/archisync/internal/logger"
)

var watchLog = logger.For("watch")

// DefaultSettle is how long a file must stay quiet before it is synced.
// Browsers write a download in several bursts.
const DefaultSettle = 2 * time.Second

// Resolver maps an inbox file to the entity type it exports.
type Resolver interface {
	EntityFor(path string) (domain.EntityType, bool)
}

// Watcher syncs an entity type when its export file is created or
// rewritten. Bursts of events are coalesced per type, and each type is
// synced at most once per MinInterval.
type Watcher struct {
	dir      string
	resolver Resolver
	syncOrch driving.SyncOrchestrator

	settle      time.Duration
	minInterval time.Duration

	mu       sync.Mutex
	timers   map[domain.EntityType]*time.Timer
	limiters map[domain.EntityType]*rate.Limiter
	stopped  bool
	wg       sync.WaitGroup

	// OnSync is called after every triggered sync. Optional.
	OnSync func(result *domain.SyncResult, err error)
}

// NewWatcher creates a watcher over dir.
func NewWatcher(
	dir string,
	resolver Resolver,
	syncOrch driving.SyncOrchestrator,
	settings domain.WatchSettings,
) *Watcher {
	return &Watcher{
		dir:         dir,
		resolver:    resolver,
		syncOrch:    syncOrch,
		settle:      DefaultSettle,
		minInterval: settings.MinInterval,
		timers:      make(map[domain.EntityType]*time.Timer),
		limiters:    make(map[domain.EntityType]*rate.Limiter),
	}
}

// SetSettle overrides the quiet period.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Run watches the inbox until ctx is cancelled. Syncs started by the
// watcher are allowed to finish before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	watchLog.Info("watching %s", w.dir)

	w.mu.Lock()
	w.stopped = false
	w.mu.Unlock()

	defer w.wg.Wait()
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if t, ok := w.handleEvent(event); ok {
				w.schedule(ctx, t, w.settle)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			watchLog.Warn("%v", err)
		}
	}
}

// handleEvent returns the entity type a filesystem event should sync.
// Only creates, writes and renames onto an export file count.
func (w *Watcher) handleEvent(event fsnotify.Event) (domain.EntityType, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	return w.resolver.EntityFor(event.Name)
}

// schedule (re)arms the timer of an entity type. It is a no-op once the
// watcher has stopped.
func (w *Watcher) schedule(ctx context.Context, t domain.EntityType, after time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || ctx.Err() != nil {
		return
	}
	if timer, ok := w.timers[t]; ok {
		timer.Reset(after)
		return
	}
	w.timers[t] = time.AfterFunc(after, func() { w.fire(ctx, t) })
}

// fire runs a sync once the file settled and the type's rate allows it.
func (w *Watcher) fire(ctx context.Context, t domain.EntityType) {
	// Joining wg under mu keeps Add ahead of Run's Wait.
	w.mu.Lock()
	if w.stopped || ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	res := w.limiter(t).Reserve()
	if d := res.Delay(); d > 0 {
		res.Cancel()
		watchLog.Debug("%s throttled for %s", t, d.Round(time.Second))
		w.schedule(ctx, t, d)
		return
	}

	watchLog.Info("%s export changed, syncing", t)
	result, err := w.syncOrch.Sync(ctx, t, driving.SyncOptions{Trigger: domain.TriggerWatch})
	if errors.Is(err, domain.ErrSyncInProgress) {
		// Retry once the running sync is likely done.
		res.Cancel()
		w.schedule(ctx, t, w.settle)
		return
	}
	if err != nil {
		watchLog.Warn("%s sync failed: %v", t, err)
	}
	if w.OnSync != nil {
		w.OnSync(result, err)
	}
}

func (w *Watcher) limiter(t domain.EntityType) *rate.Limiter {
	w.mu.Lock()
	defer w.mu.Unlock()

	lim, ok := w.limiters[t]
	if !ok {
		every := rate.Inf
		if w.minInterval > 0 {
			every = rate.Every(w.minInterval)
		}
		lim = rate.NewLimiter(every, 1)
		w.limiters[t] = lim
	}
	return lim
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for t, timer := range w.timers {
		timer.Stop()
		delete(w.timers, t)
	}
}
