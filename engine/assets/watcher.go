package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/millennium-run/engine/apperr"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watcher reacts to on-disk changes under the asset root. A change to a Static asset
// triggers re-verification and poisons the bundle on mismatch; a change to any other
// asset bumps the handle's generation so the next read misses the cache.
type watcher struct {
	b    *Bundle
	fs   *fsnotify.Watcher
	log  *zap.Logger
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func newWatcher(b *Bundle) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apperr.Wrap(apperr.IOOther, "watcher.new", b.root, err)
	}
	w := &watcher{
		b:    b,
		fs:   fw,
		log:  b.log.Named("watcher"),
		done: make(chan struct{}),
	}

	err = filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, apperr.FromIO("watcher.add", b.root, err)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(ev.Name); err != nil {
				w.log.Warn("watch new directory", zap.String("dir", ev.Name), zap.Error(err))
			}
			return
		}
	}

	rel, err := filepath.Rel(w.b.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	h := w.b.lookup(rel)
	if h == nil {
		return
	}

	if h.Kind() != Static {
		h.bump()
		w.log.Debug("asset changed", zap.String("path", rel), zap.Stringer("op", ev.Op),
			zap.Uint64("generation", h.Generation()))
		return
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.b.Poison("static asset removed: " + rel)
		return
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return
	}
	if err := VerifyFile(w.b.root, w.b.keysDir, rel); err != nil {
		if errors.Is(err, apperr.InvalidKey) || errors.Is(err, apperr.NotFound) {
			w.b.Poison("static asset modified: " + rel)
			return
		}
		w.log.Warn("re-verify static asset", zap.String("path", rel), zap.Error(err))
	}
}

func (w *watcher) close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
