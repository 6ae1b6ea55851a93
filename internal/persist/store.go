package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/trove/schema"
)

const (
	appDataDir   = "appdata"
	userDataFile = "userdata.json"
	settingsFile = "settings.json"
)

// UserData captures the open tabs, the last open tab and recent files.
type UserData struct {
	Tabs        []schema.Tab        `json:"tabs"`
	LastOpenTab schema.TabID        `json:"last_open_tab"`
	RecentFiles []schema.RecentFile `json:"recent_files"`
}

// Store persists user data and settings under a trove root.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a persistent store rooted at dir.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, appDataDir), 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// AppDataDir returns the directory holding user data and lock files.
func (s *Store) AppDataDir() string {
	return filepath.Join(s.dir, appDataDir)
}

// UserDataPath returns the location of userdata.json.
func (s *Store) UserDataPath() string {
	return filepath.Join(s.dir, appDataDir, userDataFile)
}

// SettingsPath returns the location of settings.json.
func (s *Store) SettingsPath() string {
	return filepath.Join(s.dir, settingsFile)
}

// LoadUserData reads userdata.json. ok is false when it does not exist.
func (s *Store) LoadUserData() (UserData, bool, error) {
	var data UserData
	ok, err := s.load("userdata", s.UserDataPath(), &data)
	if err != nil || !ok {
		return UserData{}, ok, err
	}
	s.debug("state load ok", "kind", "userdata", "tabs", len(data.Tabs))
	return data, true, nil
}

// SaveUserData writes userdata.json atomically.
func (s *Store) SaveUserData(data UserData) error {
	if err := s.save("userdata", s.UserDataPath(), data); err != nil {
		return err
	}
	s.trace("state save ok", "kind", "userdata", "tabs", len(data.Tabs))
	return nil
}

// LoadSettings reads settings.json. ok is false when it does not exist.
func (s *Store) LoadSettings() (schema.Settings, bool, error) {
	var settings schema.Settings
	ok, err := s.load("settings", s.SettingsPath(), &settings)
	if err != nil || !ok {
		return nil, ok, err
	}
	return settings, true, nil
}

// SaveSettings writes settings.json atomically.
func (s *Store) SaveSettings(settings schema.Settings) error {
	if err := s.save("settings", s.SettingsPath(), settings); err != nil {
		return err
	}
	s.trace("state save ok", "kind", "settings")
	return nil
}

func (s *Store) load(kind, path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.debug("state load miss", "kind", kind)
			return false, nil
		}
		s.warn("state load failed", "kind", kind, "err", err)
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.warn("state load failed", "kind", kind, "err", err)
		return false, err
	}
	return true, nil
}

func (s *Store) save(kind, path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		s.warn("state save failed", "kind", kind, "err", err)
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.warn("state save failed", "kind", kind, "err", err)
		return err
	}
	if err := WriteFileAtomic(path, data, 0o600); err != nil {
		s.warn("state save failed", "kind", kind, "err", err)
		return err
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) debug(msg string, kv ...any) {
	if s.log != nil {
		s.log.Debug(msg, kv...)
	}
}

func (s *Store) trace(msg string, kv ...any) {
	if s.log != nil {
		s.log.Trace(msg, kv...)
	}
}

func (s *Store) warn(msg string, kv ...any) {
	if s.log != nil {
		s.log.Warn(msg, kv...)
	}
}
