package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/agbizu/agbizu/internal/models"
)

// File stores each account's events and scale as JSON files under a data
// directory. Good enough for single-instance local deployments.
type File struct {
	dir string
	mu  sync.Mutex
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) eventsPath(accountID int64) string {
	return filepath.Join(f.dir, fmt.Sprintf("events_%d.json", accountID))
}

func (f *File) scalePath(accountID int64) string {
	return filepath.Join(f.dir, fmt.Sprintf("scale_%d.json", accountID))
}

func (f *File) LoadAll(_ context.Context, accountID int64) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.eventsPath(accountID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var events []models.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return events, nil
}

func (f *File) ReplaceAll(_ context.Context, accountID int64, events []models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if events == nil {
		events = []models.Event{}
	}
	raw, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	return writeAtomic(f.eventsPath(accountID), raw)
}

func (f *File) LoadScale(_ context.Context, accountID int64) (*models.ScheduleDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.scalePath(accountID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var def models.ScheduleDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return &def, nil
}

func (f *File) SaveScale(_ context.Context, accountID int64, def models.ScheduleDefinition) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode scale: %w", err)
	}
	return writeAtomic(f.scalePath(accountID), raw)
}

// Accounts scans the data directory for per-account files.
func (f *File) Accounts(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		var idPart string
		switch {
		case strings.HasPrefix(name, "events_"):
			idPart = strings.TrimSuffix(strings.TrimPrefix(name, "events_"), ".json")
		case strings.HasPrefix(name, "scale_"):
			idPart = strings.TrimSuffix(strings.TrimPrefix(name, "scale_"), ".json")
		default:
			continue
		}
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil {
			continue
		}
		seen[id] = true
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// writeAtomic writes via a temp file and rename so a crash mid-write never
// leaves a truncated file behind.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
