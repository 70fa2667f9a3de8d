package layout

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a layout file whenever it changes on disk and hands the
// freshly parsed layout to a callback. A parse failure keeps the previous
// layout in effect.
type Watcher struct {
	path string
	fw   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching path. onReload is called from the watcher
// goroutine with each successfully reloaded layout.
func Watch(path string, onReload func(*Layout)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors commonly replace the file, which drops
	// a watch placed on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{path: path, fw: fw, done: make(chan struct{})}
	go w.loop(onReload)
	return w, nil
}

func (w *Watcher) loop(onReload func(*Layout)) {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			l, err := LoadFile(w.path)
			if err != nil {
				log.Warnf("Layout reload failed for %s: %v", w.path, err)
				continue
			}
			log.Debugf("Layout %q reloaded", l.ID())
			onReload(l)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warnf("Layout watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
