// Package settings is the configuration accessor for the agent, built on
// Viper. Two persistence scopes exist, each backed by its own file: the user
// scope (editable per-user preferences) and the global scope (machine-wide
// state such as notification suppression flags). Reads resolve user over
// global over built-in defaults.
package settings

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Well-known configuration keys.
const (
	KeyEnabled      = "enabled"
	KeyAlignment    = "alignment"
	KeySuppressAll  = "notifications.suppress_all"
	KeyIconMappings = "icons.custom"
)

// Scope selects which configuration file a write targets.
type Scope int

const (
	ScopeUser Scope = iota
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "user"
}

// Store provides read-write access to named settings across both scopes.
// Reads are cheap; writes persist to the scope's file immediately.
type Store struct {
	mu       sync.RWMutex
	user     *viper.Viper
	global   *viper.Viper
	paths    map[Scope]string
	onChange []func()
	watching bool
}

// Load opens (or creates) both scope files under dir and returns a Store.
// Missing files are created empty so the config watcher has something to
// watch; missing keys fall back to defaults.
func Load(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &Store{
		paths: map[Scope]string{
			ScopeUser:   filepath.Join(dir, "config.yaml"),
			ScopeGlobal: filepath.Join(dir, "global.yaml"),
		},
	}

	s.user = viper.New()
	s.global = viper.New()

	// Defaults live on the global instance — the last stop in read resolution.
	s.global.SetDefault(KeyEnabled, true)
	s.global.SetDefault(KeyAlignment, "Left")
	s.global.SetDefault(KeySuppressAll, false)

	for scope, v := range map[Scope]*viper.Viper{ScopeUser: s.user, ScopeGlobal: s.global} {
		path := s.paths[scope]
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if writeErr := os.WriteFile(path, []byte("{}\n"), 0o600); writeErr != nil {
				return nil, fmt.Errorf("seed %s config: %w", scope, writeErr)
			}
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s config: %w", scope, err)
		}
	}

	return s, nil
}

// Path returns the file backing the given scope.
func (s *Store) Path(scope Scope) string {
	return s.paths[scope]
}

// Bool reads a boolean setting, resolving user scope first.
func (s *Store) Bool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user.IsSet(key) {
		return s.user.GetBool(key)
	}
	return s.global.GetBool(key)
}

// String reads a string setting, resolving user scope first.
func (s *Store) String(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user.IsSet(key) {
		return s.user.GetString(key)
	}
	return s.global.GetString(key)
}

// SetBool writes and persists a boolean setting at the given scope.
func (s *Store) SetBool(key string, value bool, scope Scope) error {
	return s.set(key, value, scope)
}

// SetString writes and persists a string setting at the given scope.
func (s *Store) SetString(key, value string, scope Scope) error {
	return s.set(key, value, scope)
}

// set persists key through a scratch Viper instead of the live instance.
// Viper's Set places values at its override level, above file contents, so a
// Set on the live instance would shadow every later re-read of that key from
// disk. The scratch write keeps the live instance file-backed: it only ever
// re-reads, and manual edits keep winning.
func (s *Store) set(key string, value interface{}, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.paths[scope]

	scratch := viper.New()
	scratch.SetConfigFile(path)
	scratch.SetConfigType("yaml")
	if err := scratch.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s config: %w", scope, err)
	}
	scratch.Set(key, value)
	if err := scratch.WriteConfigAs(path); err != nil {
		return fmt.Errorf("persist %s config: %w", scope, err)
	}

	v := s.global
	if scope == ScopeUser {
		v = s.user
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reload %s config: %w", scope, err)
	}
	return nil
}

// Enabled reports whether the presence integration is globally enabled.
func (s *Store) Enabled() bool {
	return s.Bool(KeyEnabled)
}

// Alignment returns the configured indicator alignment literal,
// "Left" or "Right".
func (s *Store) Alignment() string {
	a := s.String(KeyAlignment)
	if a != "Right" {
		return "Left"
	}
	return a
}

// SuppressNotifications reports whether all failure notifications are muted.
func (s *Store) SuppressNotifications() bool {
	return s.Bool(KeySuppressAll)
}

// IconMappings returns the filename-to-icon overrides, with user-scope
// entries shadowing global ones.
func (s *Store) IconMappings() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := make(map[string]string)
	for k, v := range s.global.GetStringMapString(KeyIconMappings) {
		merged[k] = v
	}
	for k, v := range s.user.GetStringMapString(KeyIconMappings) {
		merged[k] = v
	}
	return merged
}

// OnChange registers a callback invoked after either scope's file changes on
// disk. Callbacks run on the watcher goroutine and must not block.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Watch starts watching both scope files for live edits. Viper re-reads the
// changed file before the callback fires, so listeners observe fresh values.
func (s *Store) Watch() {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return
	}
	s.watching = true
	s.mu.Unlock()

	for _, v := range []*viper.Viper{s.user, s.global} {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Printf("[settings] Config changed: %s", e.Name)
			s.fireChange()
		})
		v.WatchConfig()
	}
}

func (s *Store) fireChange() {
	s.mu.RLock()
	listeners := make([]func(), len(s.onChange))
	copy(listeners, s.onChange)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
