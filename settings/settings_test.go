// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/accent-vote/identity"
	"github.com/danielhkuo/accent-vote/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Settings
		wantErr bool
	}{
		{
			name:  "empty document uses defaults",
			input: "",
			want:  Defaults(),
		},
		{
			name: "all fields",
			input: `
voting_enabled: false
time_bucket: Day
blocked_identities:
  - " user:mallory "
  - ""
  - abc123
`,
			want: Settings{
				VotingEnabled:     false,
				TimeBucket:        models.BucketDay,
				BlockedIdentities: []string{"user:mallory", "abc123"},
			},
		},
		{
			name:  "partial keeps defaults",
			input: "blocked_identities: [user:x]\n",
			want: Settings{
				VotingEnabled:     true,
				TimeBucket:        models.BucketHour,
				BlockedIdentities: []string{"user:x"},
			},
		},
		{name: "bad bucket", input: "time_bucket: week\n", wantErr: true},
		{name: "unknown key", input: "voting: true\n", wantErr: true},
		{name: "malformed", input: "voting_enabled: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_NoFile(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	snap := s.Current()
	assert.Equal(t, uint64(1), snap.Version)
	assert.True(t, snap.Settings.VotingEnabled)
	assert.Equal(t, models.BucketHour, s.TimeBucket())
	assert.False(t, snap.Blocked("anyone"))
	assert.NoError(t, s.Reload())
	assert.NoError(t, s.Watch(context.Background()))
}

func TestStore_ReloadAndVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "blocked_identities: [user:mallory]\n")

	s, err := NewStore(path)
	require.NoError(t, err)
	first := s.Current()
	assert.True(t, first.Blocked(identity.Identity("user:mallory")))

	writeFile(t, path, "voting_enabled: false\ntime_bucket: day\n")
	require.NoError(t, s.Reload())
	second := s.Current()
	assert.Greater(t, second.Version, first.Version)
	assert.False(t, second.Settings.VotingEnabled)
	assert.False(t, second.Blocked(identity.Identity("user:mallory")))
	assert.Equal(t, models.BucketDay, s.TimeBucket())

	// Snapshots already handed out do not change
	assert.True(t, first.Blocked(identity.Identity("user:mallory")))

	// A broken file keeps the last good snapshot
	writeFile(t, path, "time_bucket: fortnight\n")
	assert.Error(t, s.Reload())
	assert.Equal(t, second.Version, s.Version())
}

func TestNewStore_Errors(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "nope: 1\n")
	_, err = NewStore(path)
	assert.Error(t, err)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(Defaults())
			_ = s.Current().Blocked("x")
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(writers+1), s.Version())
}

func TestStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "voting_enabled: true\n")

	s, err := NewStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	writeFile(t, path, "voting_enabled: false\n")

	assert.Eventually(t, func() bool {
		return !s.Current().Settings.VotingEnabled
	}, 5*time.Second, 20*time.Millisecond)
}
