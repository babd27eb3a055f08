package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/pkg/core"
)

const (
	jsonExt = ".json"
	gzipExt = ".json.gz"
)

// layoutFile is the on-disk form of a layout. The document is embedded as
// JSON rather than base64.
type layoutFile struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	PresetID    string           `json:"presetId"`
	VehicleType core.VehicleType `json:"vehicleType"`
	SensorCount int              `json:"sensorCount"`
	SavedAt     time.Time        `json:"savedAt"`
	Document    json.RawMessage  `json:"document"`
}

// fileBase is the file name stem of a layout: its canonical UUID. Names are
// free text and never reach the file system.
func fileBase(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("layout id %q is not a UUID: %w", id, err)
	}
	return u.String(), nil
}

// writeLayout writes l to the output directory, gzipped when configured,
// and removes a stale file of the other format.
func writeLayout(cfg config.MemoryConfig, l *core.Layout) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rec := layoutFile{
		ID:          l.ID,
		Name:        l.Name,
		PresetID:    l.PresetID,
		VehicleType: l.VehicleType,
		SensorCount: l.SensorCount,
		SavedAt:     l.SavedAt,
		Document:    json.RawMessage(l.Document),
	}

	stem, err := fileBase(l.ID)
	if err != nil {
		return err
	}
	base := filepath.Join(cfg.OutputDir, stem)
	if cfg.CompressOutput {
		os.Remove(base + jsonExt)
		return writeGzipJSON(base+gzipExt, rec)
	}
	os.Remove(base + gzipExt)
	return writeJSON(base+jsonExt, rec)
}

func writeJSON(path string, data layoutFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data layoutFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

func readLayout(path string) (*core.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, gzipExt) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var rec layoutFile
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &core.Layout{
		LayoutSummary: core.LayoutSummary{
			ID:          rec.ID,
			Name:        rec.Name,
			PresetID:    rec.PresetID,
			VehicleType: rec.VehicleType,
			SensorCount: rec.SensorCount,
			SavedAt:     rec.SavedAt,
		},
		Document: []byte(rec.Document),
	}, nil
}

// readDir loads every layout file in dir. A missing directory is empty.
func readDir(dir string) ([]*core.Layout, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var out []*core.Layout
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, jsonExt) || strings.HasSuffix(name, gzipExt)) {
			continue
		}
		l, err := readLayout(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func removeLayout(dir, id string) error {
	stem, err := fileBase(id)
	if err != nil {
		return err
	}
	base := filepath.Join(dir, stem)
	var firstErr error
	for _, p := range []string{base + jsonExt, base + gzipExt} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
