package storage

import (
	"errors"
	"fmt"
)

const (
	ReportDir = "reports"
)

var (
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key for a run report.
type Key struct {
	Scenario string `json:"scenario"`
	Phase    string `json:"phase"`
	ID       string `json:"id"`
}

// Path returns the file name for the key.
func (k Key) Path() string {
	scenario := k.Scenario
	if scenario == "" {
		scenario = "run"
	}
	if k.Phase == "" {
		return fmt.Sprintf("%s_%s", scenario, k.ID)
	}
	return fmt.Sprintf("%s_%s_%s", scenario, k.Phase, k.ID)
}

// Persistence stores and loads values by key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// VoidStorage is a dummy storage which ignores all calls
type VoidStorage struct {
}

func (d VoidStorage) Store(k Key, value interface{}) error {
	return nil
}

func (d VoidStorage) Load(k Key, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
}

func NewVoidStorage() *VoidStorage {
	return &VoidStorage{}
}
