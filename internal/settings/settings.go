// Package settings persists the small bag of system settings the admin
// dashboard edits.  A flat JSON file is deliberate: the values are few,
// change rarely, and predate the database.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings is the admin-editable configuration bag.
type Settings struct {
	PDFStorage      string `json:"pdfStorage"`
	BackupEnabled   bool   `json:"backupEnabled"`
	BackupFrequency string `json:"backupFrequency"`
	ApplicationName string `json:"applicationName"`
	SessionTimeout  int    `json:"sessionTimeout"` // minutes
}

// ErrSessionTimeoutRange rejects timeouts outside the supported window.
var ErrSessionTimeoutRange = errors.New("session timeout must be between 5 and 120 minutes")

// Store reads and writes the settings file behind a mutex.
type Store struct {
	mu   sync.Mutex
	path string
	def  Settings
}

// NewStore creates a store for the given file path.  generatedDir seeds
// the default PDF storage location.
func NewStore(path, generatedDir string) *Store {
	return &Store{
		path: path,
		def: Settings{
			PDFStorage:      generatedDir,
			BackupEnabled:   true,
			BackupFrequency: "daily",
			ApplicationName: "AdiraMedica Inventory",
			SessionTimeout:  30,
		},
	}
}

// Get returns the current settings, writing the defaults on first use.
func (s *Store) Get() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.write(s.def); err != nil {
			return Settings{}, err
		}
		return s.def, nil
	}
	if err != nil {
		return Settings{}, err
	}
	out := s.def
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("settings file corrupt: %w", err)
	}
	return out, nil
}

// Put validates and replaces the settings.
func (s *Store) Put(in Settings) error {
	if in.SessionTimeout < 5 || in.SessionTimeout > 120 {
		return ErrSessionTimeoutRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(in)
}

func (s *Store) write(in Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(in, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
