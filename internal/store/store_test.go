package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", filepath.Join(t.TempDir(), "promoreel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDurationCache(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, ok, err := s.Duration(ctx, "voiceover/a.wav", 10, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutDuration(ctx, "voiceover/a.wav", 10, 100, 2500*time.Millisecond))
	d, ok, err := s.Duration(ctx, "voiceover/a.wav", 10, 100)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2500*time.Millisecond, d)

	// A changed file is a miss until it is measured again.
	_, ok, err = s.Duration(ctx, "voiceover/a.wav", 11, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutDuration(ctx, "voiceover/a.wav", 11, 200, 3*time.Second))
	d, ok, err = s.Duration(ctx, "voiceover/a.wav", 11, 200)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	var n int64
	require.NoError(t, s.db.Model(&DurationEntry{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRecordRuns(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i, status := range []string{"ok", "failed"} {
		r := &RenderRun{Storyboard: "default", Frames: 6240 + i, Status: status}
		require.NoError(t, s.RecordRun(ctx, r))
		assert.NotZero(t, r.ID)
	}

	runs, err := s.Runs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)

	runs, err = s.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.Error(t, err)
}
