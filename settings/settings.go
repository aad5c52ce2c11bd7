// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/accent-vote/identity"
	"github.com/danielhkuo/accent-vote/models"
)

// Settings are the operator-controlled runtime switches
type Settings struct {
	VotingEnabled     bool     `yaml:"voting_enabled"`
	BlockedIdentities []string `yaml:"blocked_identities"`
	TimeBucket        string   `yaml:"time_bucket"`
}

// Defaults is what a store serves when no settings file is configured
func Defaults() Settings {
	return Settings{
		VotingEnabled: true,
		TimeBucket:    models.BucketHour,
	}
}

// fileSettings mirrors Settings with pointers so omitted keys keep defaults
type fileSettings struct {
	VotingEnabled     *bool    `yaml:"voting_enabled"`
	BlockedIdentities []string `yaml:"blocked_identities"`
	TimeBucket        *string  `yaml:"time_bucket"`
}

// Parse decodes a settings document. Unknown keys are rejected.
func Parse(r io.Reader) (Settings, error) {
	var f fileSettings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	s := Defaults()
	if f.VotingEnabled != nil {
		s.VotingEnabled = *f.VotingEnabled
	}
	if f.TimeBucket != nil {
		s.TimeBucket = strings.ToLower(strings.TrimSpace(*f.TimeBucket))
	}
	for _, id := range f.BlockedIdentities {
		if id = strings.TrimSpace(id); id != "" {
			s.BlockedIdentities = append(s.BlockedIdentities, id)
		}
	}

	if s.TimeBucket != models.BucketHour && s.TimeBucket != models.BucketDay {
		return Settings{}, fmt.Errorf("time_bucket must be %q or %q, got %q", models.BucketHour, models.BucketDay, s.TimeBucket)
	}
	return s, nil
}

// Snapshot is an immutable, versioned view of the settings. Handlers read
// one snapshot per request so a reload never changes a decision halfway.
type Snapshot struct {
	Version  uint64
	Settings Settings
	blocked  map[identity.Identity]struct{}
}

// Blocked reports whether id is on the blocklist
func (s *Snapshot) Blocked(id identity.Identity) bool {
	_, ok := s.blocked[id]
	return ok
}

// Store holds the current settings snapshot. Reads are lock-free; writers
// are serialized and each successful write bumps the version.
type Store struct {
	path    string
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
}

// NewStore loads path into a new store. An empty path serves Defaults and
// makes Reload a no-op.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	s.publish(Defaults())
	if path == "" {
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the latest snapshot
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

func (s *Store) Version() uint64 {
	return s.Current().Version
}

// TimeBucket is the current tally bucket granularity. It matches the
// signature tally.WithGranularity expects.
func (s *Store) TimeBucket() string {
	return s.Current().Settings.TimeBucket
}

// Reload re-reads the settings file. On error the previous snapshot stays
// in effect.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	parsed, err := Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	s.publish(parsed)
	return nil
}

// Update replaces the settings in memory and returns the new snapshot
func (s *Store) Update(settings Settings) *Snapshot {
	return s.publish(settings)
}

func (s *Store) publish(settings Settings) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocked := make(map[identity.Identity]struct{}, len(settings.BlockedIdentities))
	for _, id := range settings.BlockedIdentities {
		blocked[identity.Identity(id)] = struct{}{}
	}

	var version uint64 = 1
	if prev := s.current.Load(); prev != nil {
		version = prev.Version + 1
	}
	snap := &Snapshot{Version: version, Settings: settings, blocked: blocked}
	s.current.Store(snap)
	return snap
}
