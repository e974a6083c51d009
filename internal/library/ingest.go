package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateArtifact is returned when an ingest reuses a catalog id.
var ErrDuplicateArtifact = errors.New("artifact id already catalogued")

var scanExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// ScanTypes are the categories offered by the ingest prompt.
var ScanTypes = []string{"Manuscript", "Cartography", "Oddities", "Ephemera"}

// PendingScans lists image files waiting in inbox, creating the directory when missing.
func PendingScans(inbox string) ([]string, error) {
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(inbox)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if scanExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// SuggestID derives an artifact id from a scan filename.
func SuggestID(filename string) string {
	base := filepath.Base(filename)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return strings.ToUpper(base)
}

// ImageName is the vault filename for a scan ingested under id.
func ImageName(id, scan string) string {
	return strings.ToLower(id + filepath.Ext(scan))
}

// MoveScan relocates a scan from inbox into the image vault under its catalog name.
func MoveScan(inbox, images, scan, id string) (string, error) {
	if err := os.MkdirAll(images, 0o755); err != nil {
		return "", err
	}
	name := ImageName(id, scan)
	if err := os.Rename(filepath.Join(inbox, scan), filepath.Join(images, name)); err != nil {
		return "", fmt.Errorf("move scan: %w", err)
	}
	return name, nil
}

// Normalize fills the defaults for a freshly digitized artifact.
func Normalize(a Artifact, today time.Time) Artifact {
	if a.Type == "" {
		a.Type = "Manuscript"
	}
	if a.Status == "" {
		a.Status = "verified"
	}
	if a.Icon == "" {
		a.Icon = "book"
		if a.Type == "Cartography" {
			a.Icon = "map"
		}
	}
	if a.Date == "" {
		a.Date = "Digitized " + today.Format("2006-01-02")
	}
	if a.Hazard == "" {
		a.Hazard = "None"
	}
	if a.Material == "" {
		a.Material = "Digital Scan"
	}
	return a
}

// Ingest adds a to the top of the catalog file at path. The file is created from the
// built-in catalog when it does not exist yet.
func Ingest(path string, a Artifact, today time.Time) error {
	out, err := prepend(path, a, today)
	if err != nil {
		return err
	}
	return writeCatalog(path, out)
}

// IngestScan catalogs a and moves its scan into the image vault. The catalog is
// written only once the scan is in place, and a failed write puts the scan back.
func IngestScan(path, inbox, images, scan string, a Artifact, today time.Time) (string, error) {
	out, err := prepend(path, a, today)
	if err != nil {
		return "", err
	}
	name, err := MoveScan(inbox, images, scan, a.ID)
	if err != nil {
		return "", err
	}
	if err := writeCatalog(path, out); err != nil {
		if rerr := os.Rename(filepath.Join(images, name), filepath.Join(inbox, scan)); rerr != nil {
			return "", errors.Join(err, fmt.Errorf("restore scan: %w", rerr))
		}
		return "", err
	}
	return name, nil
}

// prepend returns the encoded catalog at path with a added on top.
func prepend(path string, a Artifact, today time.Time) ([]byte, error) {
	if strings.TrimSpace(a.ID) == "" || strings.TrimSpace(a.Title) == "" {
		return nil, fmt.Errorf("artifact id and title are required")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data = defaultCatalog
	} else if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	lib, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if _, ok := lib.index[a.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateArtifact, a.ID)
	}

	doc := lib.doc
	doc.Artifacts = append([]Artifact{Normalize(a, today)}, doc.Artifacts...)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return out, nil
}

func writeCatalog(path string, out []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return os.Rename(tmp, path)
}
