// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"io/fs"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher pushes proactive cache invalidation when an archive file
// changes on disk, so a scan triggered right after a CLI writes a new
// line doesn't serve a stale (mtime,size) cache entry for the
// remainder of the aggregate TTL window.
type Watcher struct {
	fsw   *fsnotify.Watcher
	cache *AggregateCache
	file  *Scanner
	done  chan struct{}
}

// NewWatcher starts watching every root in roots. Call Close to stop.
func NewWatcher(roots map[ToolKind]string, scanner *Scanner, cache *AggregateCache) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fsw: fsw, cache: cache, file: scanner, done: make(chan struct{})}
	for _, root := range roots {
		// fsnotify does not recurse; Codex's sessions/YYYY/MM/DD
		// layout needs every directory level watched individually.
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d == nil || !d.IsDir() {
				return nil
			}
			if addErr := fsw.Add(path); addErr != nil {
				log.Printf("archive: not watching %s: %v", path, addErr)
			}
			return nil
		})
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.file.Invalidate(event.Name)
				w.cache.Invalidate()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("archive: watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watch loop.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
