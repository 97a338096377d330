package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/logging"
)

type fileData struct {
	Values map[string]string `json:"values"`
}

// File is a Store backed by a JSON file. Every write rewrites the whole file
// through a temp file and rename.
type File struct {
	mu     sync.Mutex
	path   string
	logger logrus.FieldLogger
}

// NewFile returns a File store at path. The file and its directory are created
// on first write.
func NewFile(path string, logger logrus.FieldLogger) *File {
	if logger == nil {
		logger = logging.Discard()
	}
	return &File{path: path, logger: logger.WithField("store", path)}
}

func (f *File) Load() (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

func (f *File) Save(key, value string) error {
	return f.SaveAll(map[string]string{key: value})
}

func (f *File) SaveAll(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.readLocked()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if current == nil {
		current = map[string]string{}
	}
	maps.Copy(current, values)
	return f.writeLocked(current)
}

func (f *File) Clear(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.readLocked()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if current == nil {
		current = map[string]string{}
	}
	for _, k := range keys {
		delete(current, k)
	}
	return f.writeLocked(current)
}

func (f *File) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Debug("session store: file not found, starting empty")
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read session store: %w", err)
	}
	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		f.logger.WithError(err).Warn("session store: unparsable file, ignoring contents")
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if fd.Values == nil {
		fd.Values = map[string]string{}
	}
	return fd.Values, nil
}

func (f *File) writeLocked(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session store dir: %w", err)
	}
	data, err := json.MarshalIndent(fileData{Values: values}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session store: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod session store: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session store: %w", err)
	}
	f.logger.WithField("keys", len(values)).Debug("session store: saved")
	return nil
}
