package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCommandAndHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.LogCommand("guild-1", "chan-1", "user-1", "alice", "play"))
	require.NoError(t, s.LogCommand("guild-1", "chan-1", "user-2", "bob", "skip"))

	history, err := s.CommandHistory("guild-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "play", history[0].Command)
	assert.Equal(t, "alice", history[0].Username)
	assert.Equal(t, "skip", history[1].Command)

	other, err := s.CommandHistory("guild-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCommandHistoryIsCapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.LogCommand("guild-1", "chan-1", "user-1", "alice", fmt.Sprintf("cmd-%d", i)))
	}

	history, err := s.CommandHistory("guild-1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "cmd-5", history[0].Command, "oldest entries are dropped first")
}

func TestHistorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.LogCommand("guild-1", "chan-1", "user-1", "alice", "play"))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	history, err := reopened.CommandHistory("guild-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "play", history[0].Command)
	assert.Equal(t, "chan-1", history[0].ChannelID)
}
