// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/pkg/core"
)

// Backend keeps layouts in memory and mirrors each one to a JSON file named
// after its ID in the output directory. An empty OutputDir disables the file
// mirror.
type Backend struct {
	cfg     config.MemoryConfig
	layouts map[string]*core.Layout // keyed by name
	now     func() time.Time

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		layouts: make(map[string]*core.Layout),
		now:     time.Now,
	}
}

// Init loads previously written layout files.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	loaded, err := readDir(b.cfg.OutputDir)
	if err != nil {
		return err
	}
	for _, l := range loaded {
		b.layouts[l.Name] = l
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// find returns the layout with the given name or ID. Callers hold the lock.
func (b *Backend) find(nameOrID string) (*core.Layout, bool) {
	if l, ok := b.layouts[nameOrID]; ok {
		return l, true
	}
	for _, l := range b.layouts {
		if l.ID == nameOrID {
			return l, true
		}
	}
	return nil, false
}

// SaveLayout stores a layout and writes its file.
func (b *Backend) SaveLayout(l *core.Layout) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("layout name is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch existing, ok := b.layouts[l.Name]; {
	case ok:
		l.ID = existing.ID
	case l.ID == "":
		l.ID = uuid.NewString()
	default:
		if _, err := uuid.Parse(l.ID); err != nil {
			return fmt.Errorf("layout id %q is not a UUID: %w", l.ID, err)
		}
	}
	if l.SavedAt.IsZero() {
		l.SavedAt = b.now().UTC()
	}

	stored := *l
	stored.Document = slices.Clone(l.Document)

	if b.cfg.OutputDir != "" {
		if err := writeLayout(b.cfg, &stored); err != nil {
			return err
		}
	}
	b.layouts[l.Name] = &stored
	return nil
}

// LoadLayout returns a copy of the named layout.
func (b *Backend) LoadLayout(nameOrID string) (core.Layout, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	l, ok := b.find(nameOrID)
	if !ok {
		return core.Layout{}, fmt.Errorf("%w: %s", core.ErrLayoutNotFound, nameOrID)
	}
	out := *l
	out.Document = slices.Clone(l.Document)
	return out, nil
}

// ListLayouts returns all layouts ordered by name.
func (b *Backend) ListLayouts() ([]core.LayoutSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.LayoutSummary, 0, len(b.layouts))
	for _, l := range b.layouts {
		out = append(out, l.LayoutSummary)
	}
	slices.SortFunc(out, func(a, b core.LayoutSummary) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// DeleteLayout removes a layout and its file.
func (b *Backend) DeleteLayout(nameOrID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.find(nameOrID)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrLayoutNotFound, nameOrID)
	}
	if b.cfg.OutputDir != "" {
		if err := removeLayout(b.cfg.OutputDir, l.ID); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove layout file: %w", err)
		}
	}
	delete(b.layouts, l.Name)
	return nil
}
