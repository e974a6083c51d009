package deskclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

const pinFileName = "voxPinned.json"

// FilePinStore keeps the pinned set in a JSON file on this machine.
type FilePinStore struct {
	path string
}

func NewFilePinStore(path string) *FilePinStore {
	return &FilePinStore{path: path}
}

// DefaultPinPath is voxPinned.json under the user config directory.
func DefaultPinPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vox-librorum", pinFileName), nil
}

func (s *FilePinStore) Path() string { return s.path }

// LoadPins returns the saved pins; a missing file is an empty set.
func (s *FilePinStore) LoadPins(context.Context) ([]domain.Resource, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Resource{}, nil
	}
	if err != nil {
		return nil, err
	}

	var pins []domain.Resource
	if err := json.Unmarshal(data, &pins); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if pins == nil {
		pins = []domain.Resource{}
	}
	return pins, nil
}

// SavePins replaces the file contents.
func (s *FilePinStore) SavePins(_ context.Context, pins []domain.Resource) error {
	if pins == nil {
		pins = []domain.Resource{}
	}
	data, err := json.MarshalIndent(pins, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
