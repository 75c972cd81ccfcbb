// Package prefs persists the dashboard's local UI preferences: the user
// profile and the team roster the original client kept in browser local
// storage. It is injected into the UI layer and is never referenced by the
// task API or the task cache.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Profile identifies the dashboard user.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Title  string `json:"title"`
	Avatar string `json:"avatar"`
}

// TeamMember is a roster entry shown on the team view.
type TeamMember struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Avatar string `json:"avatar"`
}

// Prefs is everything the adapter persists.
type Prefs struct {
	Profile Profile      `json:"profile"`
	Team    []TeamMember `json:"team"`
}

// Defaults seeds a fresh installation.
func Defaults() Prefs {
	return Prefs{
		Profile: Profile{Name: "Paul Basco", Email: "paul@coepi.co", Title: "Lead Engineer"},
		Team: []TeamMember{
			{ID: 1, Name: "Paul Basco", Role: "Owner", Status: "online", Avatar: "PB"},
			{ID: 2, Name: "Sarah Connor", Role: "Product Manager", Status: "busy", Avatar: "SC"},
			{ID: 3, Name: "John Smith", Role: "Frontend Dev", Status: "offline", Avatar: "JS"},
		},
	}
}

// Store loads and saves preferences.
type Store interface {
	Load() (Prefs, error)
	Save(Prefs) error
}

// FileStore keeps preferences in a single JSON file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore builds a store writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the preferences file, returning seeded defaults when it does
// not exist yet.
func (s *FileStore) Load() (Prefs, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Prefs{}, fmt.Errorf("read prefs: %w", err)
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs: %w", err)
	}
	return p, nil
}

// Save writes the preferences file, creating parent directories as needed.
func (s *FileStore) Save(p Prefs) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prefs dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
