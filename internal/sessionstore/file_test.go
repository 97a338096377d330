package sessionstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMissingLoadsEmpty(t *testing.T) {
	s := NewFile(filepath.Join(t.TempDir(), "nested", "session.json"), nil)
	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileSaveAllAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFile(path, nil)

	require.NoError(t, s.SaveAll(map[string]string{
		KeyServerAddress: "10.0.0.5",
		KeyAPIBase:       "http://10.0.0.5:3001/api",
	}))
	require.NoError(t, s.Save(KeyToken, "tok"))

	reopened := NewFile(path, nil)
	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		KeyServerAddress: "10.0.0.5",
		KeyAPIBase:       "http://10.0.0.5:3001/api",
		KeyToken:         "tok",
	}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileClear(t *testing.T) {
	s := NewFile(filepath.Join(t.TempDir(), "session.json"), nil)
	require.NoError(t, s.SaveAll(map[string]string{KeyAPIBase: "x", KeyToken: "t", KeyUser: "{}"}))

	require.NoError(t, s.Clear(SessionKeys...))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyAPIBase: "x"}, got)
}

func TestFileCorruptIsReportedAndOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := NewFile(path, nil)

	_, err := s.Load()
	require.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, s.Save(KeyServerAddress, "host"))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyServerAddress: "host"}, got)
}

func TestMemoryCopies(t *testing.T) {
	m := NewMemory(map[string]string{KeyToken: "a"})
	got, err := m.Load()
	require.NoError(t, err)
	got[KeyToken] = "mutated"

	again, _ := m.Load()
	assert.Equal(t, "a", again[KeyToken])
	assert.Equal(t, 0, m.Writes())

	require.NoError(t, m.Clear(KeyToken))
	assert.Equal(t, 1, m.Writes())
}
