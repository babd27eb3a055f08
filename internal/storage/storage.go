// Package storage persists named layouts. Backends keep the exported JSON
// document of each layout and may index its sensors.
package storage

import "github.com/sensorplan/engine/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveLayout stores l under l.Name, replacing any layout of that name.
	// It assigns l.ID for new layouts and keeps the existing ID otherwise.
	SaveLayout(l *core.Layout) error
	// LoadLayout returns the layout with the given name or ID.
	LoadLayout(nameOrID string) (core.Layout, error)
	// ListLayouts returns every saved layout ordered by name.
	ListLayouts() ([]core.LayoutSummary, error)
	// DeleteLayout removes the layout with the given name or ID.
	DeleteLayout(nameOrID string) error
}
