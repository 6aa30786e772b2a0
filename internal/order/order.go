// Package order supplies the user-defined pin display order.
package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/natefinch/atomic"
)

// Provider yields the persisted pin id order, most significant first. The
// core consults it at publish time; it never mutates it.
type Provider interface {
	Get() []string
}

// Static is a fixed in-memory order.
type Static []string

// Get returns the order as given.
func (s Static) Get() []string { return s }

type fileFormat struct {
	PinOrder []string `json:"pinOrder"`
}

// FileStore persists the pin order in a JSON settings file.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a FileStore at path. The file is created lazily on
// the first Set.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Get reads the current order. A missing or corrupt file yields no order.
func (f *FileStore) Get() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("order: read failed", slog.String("path", f.path), slog.String("error", err.Error()))
		}
		return nil
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		f.logger.Warn("order: corrupt order file ignored", slog.String("path", f.path))
		return nil
	}
	return ff.PinOrder
}

// Set replaces the persisted order.
func (f *FileStore) Set(ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(fileFormat{PinOrder: ids}, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(f.path, bytes.NewReader(data))
}
