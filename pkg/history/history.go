// Package history keeps a log of generated links on disk.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

// ErrNotFound is returned by Get and Delete for unknown ids.
var ErrNotFound = errors.New("history: entry not found")

// Entry is one completed build.
type Entry struct {
	ID       string            `json:"id"`
	Created  time.Time         `json:"created"`
	Long     string            `json:"long"`
	Short    string            `json:"short,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Error    string            `json:"error,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

// Link is the short link when present, else the long one.
func (e Entry) Link() string {
	if e.Short != "" {
		return e.Short
	}
	return e.Long
}

// Store defines the persistence contract for history entries.
type Store interface {
	Record(e *Entry) error
	List(ctx context.Context) []Entry
	Get(id string) (Entry, error)
	Delete(id string) error
	Clear() error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Open creates a Store backed by diskv rooted at basePath.
func Open(basePath string, log *slog.Logger) (Store, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("history: base path required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &diskStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath, log: log}, nil
}

type diskStore struct {
	d        *diskv.Diskv
	basePath string
	log      *slog.Logger
}

// Record assigns an id and creation time when missing and writes e.
func (s *diskStore) Record(e *Entry) error {
	if e == nil {
		return errors.New("history: nil entry")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("history: bad id %q: %w", e.ID, err)
	}
	if e.Created.IsZero() {
		e.Created = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.d.Write(e.ID, data)
}

func (s *diskStore) read(key string) (Entry, error) {
	var e Entry
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return e, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return e, err
	}
	if err := json.Unmarshal(val, &e); err != nil {
		return e, err
	}
	e.ID = key
	return e, nil
}

// List returns every entry, newest first. Unreadable entries are logged
// and skipped.
func (s *diskStore) List(ctx context.Context) []Entry {
	all := make([]Entry, 0)
	for key := range s.d.Keys(ctx.Done()) {
		e, err := s.read(key)
		if err != nil {
			s.log.Warn("skipping history entry", "key", key, "err", err)
			continue
		}
		all = append(all, e)
	}
	sortEntries(all)
	return all
}

func (s *diskStore) Get(id string) (Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.read(id)
}

func (s *diskStore) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil || !s.d.Has(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.d.Erase(id)
}

// Clear erases every entry but keeps the base directory so running
// watchers stay attached.
func (s *diskStore) Clear() error {
	var keys []string
	for key := range s.d.Keys(nil) {
		keys = append(keys, key)
	}
	for _, key := range keys {
		if err := s.d.Erase(key); err != nil {
			return fmt.Errorf("history: erase %s: %w", key, err)
		}
	}
	return nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		l, r := entries[i].Created, entries[j].Created
		if l.Equal(r) {
			return entries[i].ID < entries[j].ID
		}
		return l.After(r)
	})
}

// Keys are uuids; the first two characters shard the directory.
func keyToPathTransform(key string) *diskv.PathKey {
	if len(key) < 2 {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{
		Path:     []string{key[:2]},
		FileName: key,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}

// Nop discards everything; it backs the service when history is disabled.
type Nop struct{}

func (Nop) Record(*Entry) error { return nil }
func (Nop) List(context.Context) []Entry { return nil }
func (Nop) Get(id string) (Entry, error) { return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id) }
func (Nop) Delete(id string) error { return fmt.Errorf("%w: %s", ErrNotFound, id) }
func (Nop) Clear() error { return nil }

// Watch returns a channel that closes when ctx is done.
func (Nop) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
