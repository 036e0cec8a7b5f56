package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// EventType describes a history change notification.
type EventType int

const (
	// EventEntryChanged means the entry with the given ID was written or
	// removed.
	EventEntryChanged EventType = iota

	// EventInvalidated means callers should reload the whole list.
	EventInvalidated
)

// Event is emitted by Store.Watch when the history directory changes.
type Event struct {
	Type EventType
	ID   string
}

// Watch streams change events until ctx is cancelled. The channel is closed
// once ctx is done or the watcher fails. Events are dropped when the
// consumer falls behind.
func (s *diskStore) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("history: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("history: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.log.Warn("history watcher close", "err", err)
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("history: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("history: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Debug("history watcher error", "err", err)
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								s.log.Warn("history watch", "dir", dir, "err", err)
							} else {
								watched[dir] = struct{}{}
							}
						}
						throttle.Enqueue(Event{Type: EventInvalidated}, send)
						continue
					}
				}
				id := idForPath(evt.Name)
				if id == "" {
					throttle.Enqueue(Event{Type: EventInvalidated}, send)
					continue
				}
				throttle.Enqueue(Event{Type: EventEntryChanged, ID: id}, send)
			}
		}
	}()

	return events, nil
}

func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// idForPath returns the entry id for a diskv file path, or "" when the path
// is not an entry (diskv temp files, shard directories).
func idForPath(path string) string {
	name := filepath.Base(path)
	if _, err := uuid.Parse(name); err != nil {
		return ""
	}
	return name
}

// eventThrottle coalesces bursts of filesystem activity into one event per
// id per delay window.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[Event]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, ok := pending[Event{Type: EventInvalidated}]; ok {
		send(Event{Type: EventInvalidated})
		return
	}
	for ev := range pending {
		send(ev)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
