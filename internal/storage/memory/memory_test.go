// internal/storage/memory/memory_test.go
package memory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/pkg/core"
)

func layout(name string) *core.Layout {
	return &core.Layout{
		LayoutSummary: core.LayoutSummary{
			Name:        name,
			PresetID:    "ncap",
			VehicleType: core.VehicleSedan,
			SensorCount: 22,
		},
		Document: []byte(`{"schemaVersion":"1.0.0"}`),
	}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if b.layouts == nil {
		t.Error("layouts map not initialized")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestSaveLoad_InMemoryOnly(t *testing.T) {
	b := New(config.MemoryConfig{})
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	l := layout("front heavy")
	if err := b.SaveLayout(l); err != nil {
		t.Fatalf("SaveLayout failed: %v", err)
	}
	if l.ID == "" {
		t.Fatal("expected ID to be assigned")
	}
	if !l.SavedAt.Equal(fixed) {
		t.Errorf("expected SavedAt=%v, got %v", fixed, l.SavedAt)
	}

	byName, err := b.LoadLayout("front heavy")
	if err != nil {
		t.Fatalf("LoadLayout by name failed: %v", err)
	}
	byID, err := b.LoadLayout(l.ID)
	if err != nil {
		t.Fatalf("LoadLayout by id failed: %v", err)
	}
	if byName.ID != byID.ID || string(byName.Document) != string(l.Document) {
		t.Error("expected the same layout by name and id")
	}

	// returned documents are copies
	byName.Document[0] = 'X'
	again, _ := b.LoadLayout("front heavy")
	if again.Document[0] != '{' {
		t.Error("stored document was mutated through a loaded copy")
	}
}

func TestSave_ReplaceKeepsID(t *testing.T) {
	b := New(config.MemoryConfig{})

	first := layout("a")
	if err := b.SaveLayout(first); err != nil {
		t.Fatal(err)
	}
	second := layout("a")
	second.SensorCount = 8
	if err := b.SaveLayout(second); err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("expected ID %s to be kept, got %s", first.ID, second.ID)
	}

	list, _ := b.ListLayouts()
	if len(list) != 1 || list[0].SensorCount != 8 {
		t.Errorf("expected one replaced layout, got %+v", list)
	}
}

func TestSave_RequiresName(t *testing.T) {
	b := New(config.MemoryConfig{})
	if err := b.SaveLayout(layout("  ")); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestListLayouts_Sorted(t *testing.T) {
	b := New(config.MemoryConfig{})
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := b.SaveLayout(layout(name)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := b.ListLayouts()
	if err != nil {
		t.Fatal(err)
	}
	got := []string{list[0].Name, list[1].Name, list[2].Name}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLoadDelete_NotFound(t *testing.T) {
	b := New(config.MemoryConfig{})

	if _, err := b.LoadLayout("nope"); !errors.Is(err, core.ErrLayoutNotFound) {
		t.Errorf("expected ErrLayoutNotFound, got %v", err)
	}
	if err := b.DeleteLayout("nope"); !errors.Is(err, core.ErrLayoutNotFound) {
		t.Errorf("expected ErrLayoutNotFound, got %v", err)
	}
}

func TestFileMirror_RoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		cfg := config.MemoryConfig{OutputDir: dir, CompressOutput: compress}

		b := New(cfg)
		if err := b.Init(); err != nil {
			t.Fatal(err)
		}
		l := layout("city: night")
		if err := b.SaveLayout(l); err != nil {
			t.Fatalf("SaveLayout failed: %v", err)
		}

		ext := jsonExt
		if compress {
			ext = gzipExt
		}
		if _, err := os.Stat(filepath.Join(dir, l.ID+ext)); err != nil {
			t.Fatalf("expected layout file: %v", err)
		}

		reopened := New(cfg)
		if err := reopened.Init(); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		got, err := reopened.LoadLayout("city: night")
		if err != nil {
			t.Fatalf("LoadLayout failed: %v", err)
		}
		if got.ID != l.ID || got.SensorCount != 22 || string(got.Document) != string(l.Document) {
			t.Errorf("reloaded layout differs: %+v", got)
		}

		if err := reopened.DeleteLayout(l.ID); err != nil {
			t.Fatalf("DeleteLayout failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, l.ID+ext)); !os.IsNotExist(err) {
			t.Errorf("expected layout file to be removed, got %v", err)
		}
	}
}

func TestFileMirror_SwitchingCompressionRemovesStaleFile(t *testing.T) {
	dir := t.TempDir()

	plain := New(config.MemoryConfig{OutputDir: dir})
	if err := plain.SaveLayout(layout("x")); err != nil {
		t.Fatal(err)
	}
	gz := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	if err := gz.Init(); err != nil {
		t.Fatal(err)
	}
	x := layout("x")
	if err := gz.SaveLayout(x); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != x.ID+gzipExt {
		t.Errorf("expected only %s%s, got %v", x.ID, gzipExt, entries)
	}
}

func TestFileMirror_NamesNeverShareFiles(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "layouts")
	b := New(config.MemoryConfig{OutputDir: dir})

	names := []string{"a b", "a_b", "..", "../escape", `c:\d`}
	for _, name := range names {
		if err := b.SaveLayout(layout(name)); err != nil {
			t.Fatalf("SaveLayout(%q) failed: %v", name, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(names) {
		t.Errorf("expected %d files, got %d", len(names), len(entries))
	}
	outside, err := os.ReadDir(parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(outside) != 1 {
		t.Errorf("expected nothing written next to the output directory, got %v", outside)
	}

	reopened := New(config.MemoryConfig{OutputDir: dir})
	if err := reopened.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	list, _ := reopened.ListLayouts()
	if len(list) != len(names) {
		t.Fatalf("expected %d layouts after reload, got %v", len(names), list)
	}

	if err := reopened.DeleteLayout(".."); err != nil {
		t.Fatalf("DeleteLayout failed: %v", err)
	}
	if _, err := reopened.LoadLayout("a b"); err != nil {
		t.Errorf("deleting one layout removed another: %v", err)
	}
}

func TestSaveLayout_RejectsNonUUIDID(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	l := layout("bad")
	l.ID = "../../etc/passwd"
	if err := b.SaveLayout(l); err == nil {
		t.Error("expected an error for a non-UUID id")
	}
	if _, err := b.LoadLayout("bad"); !errors.Is(err, core.ErrLayoutNotFound) {
		t.Errorf("rejected layout must not be stored, got %v", err)
	}
}
