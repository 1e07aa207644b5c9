package server

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of filesystem events a single
// payload write produces into one notification.
const debounceWindow = 250 * time.Millisecond

// Watcher observes the review data directory and notifies the event
// hub when a payload file changes. This catches writes that bypass the
// HTTP API, such as a sidecar file dropped in by hand or synced from
// elsewhere.
type Watcher struct {
	dataDir string
	hub     *Hub
	logger  *log.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher for dataDir. Start must be called to
// begin observing.
func NewWatcher(dataDir string, hub *Hub, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dataDir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		dataDir: dataDir,
		hub:     hub,
		logger:  logger,
		fsw:     fsw,
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start begins the event loop.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop ends observation and flushes pending timers without firing.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	for id, timer := range w.pending {
		timer.Stop()
		delete(w.pending, id)
	}
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reviewID := reviewIDFromPath(event.Name)
			if reviewID == "" {
				continue
			}
			w.schedule(reviewID)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("Warning: data watcher error: %v", err)
		}
	}
}

// schedule arms (or re-arms) the per-review debounce timer.
func (w *Watcher) schedule(reviewID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.pending[reviewID]; exists {
		timer.Reset(debounceWindow)
		return
	}
	w.pending[reviewID] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, reviewID)
		w.mu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		w.hub.Broadcast(Event{Type: EventReviewUpdate, ReviewID: reviewID})
	})
}

// reviewIDFromPath maps a data file path back to its review id, or ""
// when the file is not a review payload.
func reviewIDFromPath(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".json") {
		return ""
	}
	id := strings.TrimSuffix(base, ".json")
	if !ValidReviewID(id) {
		return ""
	}
	return id
}
