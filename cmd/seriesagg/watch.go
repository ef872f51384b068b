package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/spektr-org/seriesagg/config"
	"github.com/spektr-org/seriesagg/translator"
)

// ============================================================================
// WATCH — re-run a chart whenever its input files change
// ============================================================================

// fileWatcher watches the directories holding a set of files and calls
// onChange once writes to those files have been quiet for the debounce
// period. Directories are watched rather than files so editors that
// replace a file by rename are still seen.
type fileWatcher struct {
	onChange func(paths []string)
	watcher  *fsnotify.Watcher
	targets  map[string]bool
	debounce time.Duration
	pending  map[string]time.Time
	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func newFileWatcher(paths []string, debounce time.Duration, onChange func(paths []string)) (*fileWatcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback is nil: %w", os.ErrInvalid)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch: %w", os.ErrInvalid)
	}
	if debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive, got %s: %w", debounce, os.ErrInvalid)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &fileWatcher{
		onChange: onChange,
		watcher:  fsw,
		targets:  make(map[string]bool, len(paths)),
		debounce: debounce,
		pending:  make(map[string]time.Time),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		now:      time.Now,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Start begins processing file events in a goroutine.
func (w *fileWatcher) Start() {
	go w.loop()
}

// Stop stops the watcher and waits for it to finish.
func (w *fileWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		w.watcher.Close()
	})
}

func (w *fileWatcher) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ watcher error: %v", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

// handleEvent records writes, creates and renames of watched files.
func (w *fileWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.targets[abs] {
		return
	}

	w.mu.Lock()
	w.pending[abs] = w.now()
	w.mu.Unlock()
}

func (w *fileWatcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	now := w.now()
	var ready []string
	for path, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if len(ready) > 0 {
		log.Printf("👀 watcher: %d file(s) changed, re-aggregating", len(ready))
		w.onChange(ready)
	}
}

func newWatchCommand(cfg config.Config, tr translator.Translator) *cobra.Command {
	var (
		in       inputFlags
		out      outputFlags
		series   seriesFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render a series chart every time its input files change",
		Example: `  seriesagg watch -f visits.csv -x visit_date -g week -m shoppers --format html -o chart.html
  seriesagg watch -f visits.csv -x store -m shoppers --format bars`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			render := func() {
				view, err := in.view(cmd.Context(), cfg)
				if err != nil {
					cmd.PrintErrf("load failed: %v\n", err)
					return
				}
				w, closeOut, err := out.writer(cmd)
				if err != nil {
					cmd.PrintErrf("%v\n", err)
					return
				}
				defer closeOut()
				if err := runSeries(cmd.Context(), w, view, &series, out.format, tr); err != nil {
					cmd.PrintErrf("render failed: %v\n", err)
				}
			}

			paths := in.paths(cfg)
			fw, err := newFileWatcher(paths, debounce, func([]string) { render() })
			if err != nil {
				return err
			}

			render()
			fw.Start()
			defer fw.Stop()
			cmd.PrintErrf("watching %d file(s), Ctrl-C to stop\n", len(paths))

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)
			<-quit
			return nil
		},
	}
	in.register(cmd)
	out.register(cmd, "bars", seriesFormats)
	series.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before re-rendering")
	return cmd
}
