package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// stored is the on-disk form of the persisted options. Unset fields keep
// the caller's defaults on Apply.
type stored struct {
	Algorithm     string   `json:"algorithm,omitempty"`
	Tracer        string   `json:"tracer,omitempty"`
	Threshold     *int     `json:"threshold,omitempty"`
	PaletteSeed   *int64   `json:"palette_seed,omitempty"`
	AreaThreshold *int     `json:"filter_area_threshold,omitempty"`
	PhiLow        *float64 `json:"filter_phi_low,omitempty"`
	PhiHigh       *float64 `json:"filter_phi_high,omitempty"`
	LogLevel      string   `json:"log_level,omitempty"`
	LastDir       string   `json:"last_dir,omitempty"`
}

// Prefs holds the options persisted between runs as JSON.
type Prefs struct {
	mu   sync.RWMutex
	path string
	rec  stored
}

// DefaultPrefsPath returns ~/.config/blobscope/preferences.json, or the
// platform equivalent.
func DefaultPrefsPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "blobscope", prefsFile)
}

// LoadPrefs reads preferences from path. A missing or unreadable file
// yields empty preferences that will be written to path on Save. Fields of
// the wrong JSON type are skipped; the rest still load.
func LoadPrefs(path string) *Prefs {
	p := &Prefs{path: path}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.rec)
	return p
}

// Path returns the file the preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes the preferences to disk, creating the directory if needed.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.rec, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

func (p *Prefs) snapshot() stored {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rec
}

func (p *Prefs) replace(rec stored) {
	p.mu.Lock()
	p.rec = rec
	p.mu.Unlock()
}
