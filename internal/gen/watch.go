package gen

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collects the events of one save before rebuilding.
var watchDebounce = 200 * time.Millisecond

// Watch builds once and rebuilds whenever a declaration file under the
// search directories, the listed files or the globals changes. Rebuild
// failures are logged. Watch returns when ctx is done.
func (g *Gen) Watch(ctx context.Context, config *Config) error {
	if err := g.Build(ctx, config); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()

	output, _ := filepath.Abs(config.OutputDir)
	for _, dir := range watchDirs(config) {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if skipWatchDir(p, output) {
				return filepath.SkipDir
			}
			return w.Add(p)
		})
		if err != nil {
			return err
		}
	}
	g.debug.Printf("Watching %d directories", len(w.WatchList()))

	extensions := config.ParseExtensions
	if len(extensions) == 0 {
		extensions = []string{".ts"}
	}

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.Add(ev.Name)
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 || !hasExtension(ev.Name, extensions) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			reload = timer.C
		case <-reload:
			reload = nil
			g.debug.Printf("Change detected, rebuilding")
			if err := g.Build(ctx, config); err != nil {
				g.logger.Error("rebuild failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("watch error", "err", err)
		}
	}
}

func watchDirs(config *Config) []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, dir := range config.SearchDirs {
		add(dir)
	}
	for _, file := range append(append([]string(nil), config.Files...), config.Globals...) {
		add(filepath.Dir(file))
	}
	return dirs
}

func skipWatchDir(path, output string) bool {
	if output != "" {
		if abs, err := filepath.Abs(path); err == nil && abs == output {
			return true
		}
	}
	name := filepath.Base(path)
	return name == "node_modules" || (strings.HasPrefix(name, ".") && len(name) > 1)
}

func hasExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
