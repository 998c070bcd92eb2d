package library

import (
	"compress/gzip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSaveAndReload(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "acewriter.state")
	original := NewState()
	original.Paths = NewPathSet("audio/ace/Weapons.xml", "audio/ace/levels/forest/weapons.xml")
	original.Fingerprints["weapons"] = "abc123"
	original.Settings = "def456"
	original.LastPass = "pass-1"

	require.NoError(t, original.SaveToLocalFile(stateFile))
	loaded, err := LoadStateFromLocalFile(stateFile)
	require.NoError(t, err)

	assert.Equal(t, original.Paths.Sorted(), loaded.Paths.Sorted())
	assert.Equal(t, original.Fingerprints, loaded.Fingerprints)
	assert.Equal(t, "def456", loaded.Settings)
	assert.Equal(t, "pass-1", loaded.LastPass)

	_, err = os.Stat(stateFile + workInProgressFileSuffix)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "temporary file must be gone")
}

func TestStateOverwrite(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "acewriter.state")
	first := NewState()
	first.Paths.Add("a.xml")
	require.NoError(t, first.SaveToLocalFile(stateFile))

	second := NewState()
	second.Paths.Add("b.xml")
	require.NoError(t, second.SaveToLocalFile(stateFile))

	loaded, err := LoadStateFromLocalFile(stateFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.xml"}, loaded.Paths.Sorted())
	assert.NotNil(t, loaded.Fingerprints)
}

func TestStateMissingFile(t *testing.T) {
	_, err := LoadStateFromLocalFile(filepath.Join(t.TempDir(), "absent.state"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStateLeftoverWorkInProgress(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "acewriter.state")
	require.NoError(t, NewState().SaveToLocalFile(stateFile))
	require.NoError(t, os.WriteFile(stateFile+workInProgressFileSuffix, nil, 0o600))

	_, err := LoadStateFromLocalFile(stateFile)
	assert.ErrorIs(t, err, ErrLeftoverWorkInProgress)
}

func TestStateCorruption(t *testing.T) {
	dir := t.TempDir()
	writeCompressed := func(name string, content string) string {
		target := filepath.Join(dir, name)
		file, err := os.Create(target)
		require.NoError(t, err)
		compressor := gzip.NewWriter(file)
		_, err = compressor.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, compressor.Close())
		require.NoError(t, file.Close())
		return target
	}

	notCompressed := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(notCompressed, []byte("1.0.0\n"), 0o600))

	cases := map[string]struct {
		path     string
		contains string
	}{
		"not compressed":     {notCompressed, "corrupted"},
		"no version":         {writeCompressed("noversion", "hello\n"), "version not found"},
		"future version":     {writeCompressed("future", "2.0.0\n"+stateContentOpener+"\n{}\n"+stateContentTerminator+"\n"), "incompatible"},
		"missing content":    {writeCompressed("nocontent", "1.0.0\n"), "content missing"},
		"broken json":        {writeCompressed("json", "1.0.0\n"+stateContentOpener+"\n{\"Paths\":\n"), "corrupted"},
		"missing terminator": {writeCompressed("noterm", "1.0.0\n"+stateContentOpener+"\n{\"Paths\":[]}\n"), "termination"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadStateFromLocalFile(c.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.contains)
		})
	}
}
