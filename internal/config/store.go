package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/dshills/hotkeytyper/internal/snippet"
)

// Store persists the snippet configuration as JSON.
type Store struct {
	path   string
	backup string
	legacy string
	log    Logger
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLegacyPath sets where a version 1 settings file is looked for when
// the settings file does not exist. Empty disables the lookup.
func WithLegacyPath(path string) StoreOption {
	return func(s *Store) { s.legacy = path }
}

// WithStoreLogger sets the logger.
func WithStoreLogger(l Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a store for the settings file at path. The backup file
// lives in the same directory.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		backup: filepath.Join(filepath.Dir(path), BackupFileName),
		legacy: LegacySettingsPath(),
		log:    nopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.legacy != "" && sameFile(s.legacy, s.path) {
		s.legacy = ""
	}
	return s
}

func sameFile(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// BackupPath returns the backup file path.
func (s *Store) BackupPath() string { return s.backup }

// Load reads the configuration. It always returns a usable configuration;
// the error reports what went wrong when defaults had to be substituted.
func (s *Store) Load() (*snippet.Configuration, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return snippet.DefaultConfiguration(), fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if cfg, ok := s.importLegacy(); ok {
			return cfg, nil
		}
		s.log.Info("no settings at %s, using defaults", s.path)
		return snippet.DefaultConfiguration(), nil
	}
	if err != nil {
		return snippet.DefaultConfiguration(), fmt.Errorf("reading settings %s: %w", s.path, err)
	}

	cfg, migrated, err := s.decode(s.path, data)
	if err != nil {
		return snippet.DefaultConfiguration(), err
	}
	if migrated {
		s.log.Info("settings migrated to version %d", snippet.SettingsVersion)
		if err := s.Save(cfg); err != nil {
			s.log.Warn("saving migrated settings: %v", err)
		}
	}
	return cfg, nil
}

// decode parses data, migrating version 1 documents.
func (s *Store) decode(path string, data []byte) (*snippet.Configuration, bool, error) {
	if !gjson.ValidBytes(data) {
		return nil, false, &ParseError{Path: path, Message: "invalid JSON"}
	}

	migrated := false
	if isLegacy(data) {
		doc, err := migrateV1(data, s.now())
		if err != nil {
			return nil, false, fmt.Errorf("migrating %s: %w", path, err)
		}
		if doc == nil {
			return snippet.DefaultConfiguration(), true, nil
		}
		data = doc
		migrated = true
	}

	cfg := snippet.NewConfiguration()
	if err := json.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var serr *json.SyntaxError
		if errors.As(err, &serr) {
			pe.Line, pe.Column = position(data, serr.Offset)
		}
		return nil, false, pe
	}
	cfg.EnsureValid()
	return cfg, migrated, nil
}

// position converts a byte offset to a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	line, col := 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// importLegacy moves a version 1 file from next to the executable into
// the settings directory, renaming the old file with MigratedSuffix.
func (s *Store) importLegacy() (*snippet.Configuration, bool) {
	if s.legacy == "" {
		return nil, false
	}
	data, err := os.ReadFile(s.legacy)
	if err != nil {
		return nil, false
	}
	s.log.Info("found settings in old location %s", s.legacy)

	cfg, _, err := s.decode(s.legacy, data)
	if err != nil {
		s.log.Warn("old settings %s unreadable: %v", s.legacy, err)
		return nil, false
	}
	if err := s.Save(cfg); err != nil {
		s.log.Warn("saving imported settings: %v", err)
		return cfg, true
	}
	if err := os.Rename(s.legacy, s.legacy+MigratedSuffix); err != nil {
		s.log.Warn("renaming old settings: %v", err)
	}
	return cfg, true
}

// Save validates cfg, copies the current file to the backup and writes
// the new contents atomically. A nil error is success.
func (s *Store) Save(cfg *snippet.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil configuration", ErrInvalidSettings)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	data, err := encode(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if current, err := os.ReadFile(s.path); err == nil {
		if err := writeAtomic(s.backup, current); err != nil {
			return fmt.Errorf("writing backup: %w", err)
		}
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	s.log.Debug("settings saved to %s", s.path)
	return nil
}

// RestoreBackup replaces the settings file with the backup and returns
// the restored configuration.
func (s *Store) RestoreBackup() (*snippet.Configuration, error) {
	data, err := os.ReadFile(s.backup)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	cfg, _, err := s.decode(s.backup, data)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(s.path, data); err != nil {
		return nil, fmt.Errorf("restoring backup: %w", err)
	}
	return cfg, nil
}

// Export writes cfg to path without touching the settings file.
func (s *Store) Export(cfg *snippet.Configuration, path string) error {
	data, err := encode(cfg)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Import reads a configuration from path. The settings file is not
// changed; callers Save the result if they want to keep it.
func (s *Store) Import(path string) (*snippet.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, _, err := s.decode(path, data)
	return cfg, err
}

func encode(cfg *snippet.Configuration) ([]byte, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return pretty.Pretty(raw), nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
