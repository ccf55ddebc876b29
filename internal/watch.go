package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	tt "github.com/makcandrov/math-blocks/internal/types"
)

// Watcher reruns the engine over files as they change on disk.
type Watcher struct {
	engine   *Engine
	fs       *fsnotify.Watcher
	dirs     []string
	report   func(filename string, issues []tt.Issue)
	done     chan struct{}
	watching bool
}

// NewWatcher watches every directory under dirs and delivers the issues of
// each changed file to report. A nil report logs them.
func NewWatcher(engine *Engine, dirs []string, report func(string, []tt.Issue)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}
	if report == nil {
		report = logIssues
	}
	return &Watcher{
		engine: engine,
		fs:     fs,
		dirs:   dirs,
		report: report,
		done:   make(chan struct{}),
	}, nil
}

// Start registers the watch roots and processes events until Stop.
func (w *Watcher) Start() error {
	if w.watching {
		return fmt.Errorf("already watching")
	}

	for _, dir := range w.dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.fs.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.watching = true
	go w.loop()
	return nil
}

// Stop ends the watch loop and releases the watcher.
func (w *Watcher) Stop() error {
	if !w.watching {
		log.Println("not watching")
		return nil
	}

	w.watching = false
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !strings.HasSuffix(event.Name, ".go") {
		return
	}

	// wait for a while after the change so an editor's burst of writes
	// lands as a single run
	time.Sleep(100 * time.Millisecond)

	issues, err := w.engine.Run(event.Name)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	w.report(event.Name, issues)
}

func logIssues(filename string, issues []tt.Issue) {
	if len(issues) == 0 {
		log.Printf("no issues found in %s", filename)
		return
	}

	log.Printf("found %d issues in %s", len(issues), filename)
	for _, issue := range issues {
		log.Printf("- %s: %s", issue.Rule, issue.Message)
	}
}
