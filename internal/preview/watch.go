package preview

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces bursts of writes from editors.
const debounceDelay = 100 * time.Millisecond

// watchedFiles returns the absolute input files to watch.
func (s *Server) watchedFiles() []string {
	var files []string
	for _, f := range []string{s.treeFile, s.dataFile} {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		files = append(files, f)
	}
	return files
}

// watchFiles rebuilds the project when the tree or data file changes.
// Directories are watched rather than files so that editors which replace
// files on save keep triggering events.
func (s *Server) watchFiles(ctx context.Context) error {
	files := s.watchedFiles()
	if len(files) == 0 {
		s.logger.Debug("nothing to watch")
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	targets := make(map[string]bool, len(files))
	for _, f := range files {
		targets[f] = true
		dir := filepath.Dir(f)
		if err := watcher.Add(dir); err != nil {
			s.logger.Error("failed to watch directory", "dir", dir, "error", err)
			// Don't fail - continue without watching
		}
	}

	rebuild := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.logger.Debug("input changed, rebuilding", "file", name)
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case <-rebuild:
			// Failures are logged by Rebuild and keep the last good project.
			_ = s.Rebuild(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
