package export

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is quiet period after last change before export is redone.
const DefaultDebounce = 300 * time.Millisecond

// Watch runs the job and then runs it again every time source changes until
// context is canceled. Failed runs are logged, watching continues. Files
// written by the job are overwritten on subsequent runs.
func Watch(ctx context.Context, j *Job, debounce time.Duration, log *zap.Logger) error {
	log = log.Named("watch")

	root, isDir, err := watchRoot(j.Src)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// single files are replaced by editors, watching directory catches that
	dir := root
	if !isDir {
		dir = filepath.Dir(root)
	}
	// destination inside watched tree is not watched
	var ignore string
	if isDir && j.Dst != root && within(j.Dst, root) {
		ignore = j.Dst
	}
	if err := addTree(watcher, dir, isDir, ignore); err != nil {
		return err
	}

	run := func() {
		if _, err := j.Run(ctx, log); err != nil && ctx.Err() == nil {
			log.Error("Export failed", zap.Error(err))
		}
		j.Overwrite = true
	}

	run()
	log.Info("Watching for changes", zap.String("path", root))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Watching stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// our own output must not trigger next run
			if j.Produced(ev.Name) || !relevant(ev, root, isDir, ignore) {
				continue
			}
			log.Debug("Source changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			if isDir && ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(watcher, ev.Name, true, ignore); err != nil {
						log.Warn("Unable to watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", zap.Error(err))
		case <-timer.C:
			run()
		}
	}
}

// watchRoot finds existing part of the source path, archives are watched as
// files.
func watchRoot(src string) (string, bool, error) {
	for head := src; len(head) > 0; head = filepath.Dir(head) {
		fi, err := os.Stat(head)
		if err == nil {
			return head, fi.IsDir(), nil
		}
		if parent := filepath.Dir(head); parent == head {
			break
		}
	}
	return "", false, errors.New("input source was not found (" + src + ")")
}

// addTree adds dir and, when recursive, all its subdirectories except
// ignored one.
func addTree(w *fsnotify.Watcher, dir string, recursive bool, ignore string) error {
	if !recursive {
		return w.Add(dir)
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if len(ignore) > 0 && within(p, ignore) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

func relevant(ev fsnotify.Event, root string, isDir bool, ignore string) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if !isDir {
		return ev.Name == root
	}
	return len(ignore) == 0 || !within(ev.Name, ignore)
}

// within reports whether p is dir or located under it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
