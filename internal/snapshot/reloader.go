package snapshot

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// reloadDebounce coalesces the burst of filesystem events an editor or
// atomic-rename writer produces for a single logical update.
const reloadDebounce = 250 * time.Millisecond

// Reloader watches a snapshot file and rebuilds the store whenever it
// changes.  A failed rebuild keeps the previous snapshot active.
type Reloader struct {
	store    *Store
	source   Source
	path     string
	log      logging.Logger
	onReload func(error) // metrics hook, may be nil
	watcher  *fsnotify.Watcher
}

// NewReloader creates a reloader for the given file path.  The parent
// directory is watched rather than the file itself so that atomic
// rename-into-place updates are observed.
func NewReloader(store *Store, source Source, path string, log logging.Logger) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "cannot create filesystem watcher")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoadFailed,
			"cannot watch snapshot directory")
	}
	return &Reloader{
		store:   store,
		source:  source,
		path:    path,
		log:     log,
		watcher: watcher,
	}, nil
}

// OnReload registers a callback invoked after every reload attempt with its
// outcome.  Must be called before Run.
func (r *Reloader) OnReload(fn func(error)) {
	r.onReload = fn
}

// Run blocks, reloading the store on every relevant file change until ctx is
// cancelled.  It always returns nil after cancellation.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(ev) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			pending = debounce.C

		case <-pending:
			pending = nil
			r.reload(ctx)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("snapshot watcher error", logging.Err(err))
		}
	}
}

func (r *Reloader) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(r.path) {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

func (r *Reloader) reload(ctx context.Context) {
	err := r.store.Reload(ctx, r.source)
	if r.onReload != nil {
		r.onReload(err)
	}
	if err != nil {
		r.log.Error("snapshot reload failed, keeping previous snapshot",
			logging.String("path", r.path), logging.Err(err))
		return
	}
	snap := r.store.Current()
	r.log.Info("snapshot reloaded",
		logging.String("path", r.path),
		logging.Int("concepts", snap.Catalog.Len()),
		logging.Int("relationships", snap.Graph.Len()),
	)
}
