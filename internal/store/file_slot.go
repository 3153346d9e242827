package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fentz26/tasklist/internal/models"
)

// FileSlot stores the task collection as a JSON array in a single file.
type FileSlot struct {
	Path string
}

// NewFileSlot returns a slot backed by the file at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{Path: path}
}

// Save writes the collection to a temp file and renames it into place.
func (f *FileSlot) Save(tasks []models.Task) error {
	if f.Path == "" {
		return errors.New("empty slot path")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create slot directory: %w", err)
	}

	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("replace slot: %w", err)
	}
	return nil
}

// Load reads the collection back. See Slot.Load for the error contract.
func (f *FileSlot) Load() ([]models.Task, error) {
	if f.Path == "" {
		return []models.Task{}, errors.New("empty slot path")
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Task{}, nil
		}
		return []models.Task{}, fmt.Errorf("read slot: %w", err)
	}
	return decodeTasks(data)
}
