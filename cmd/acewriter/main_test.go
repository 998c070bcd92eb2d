package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotkeys(t *testing.T) {
	keys, labels := hotkeys([]string{"yes", "no", "never"}, false)

	assert.Equal(t, []string{"[y]es", "[n]o", "n[e]ver"}, labels)
	assert.Equal(t, "yes", keys['Y'])
	assert.Equal(t, "no", keys['n'])
	assert.Equal(t, "never", keys['E'])
	assert.NotContains(t, keys, 'o')
}

func TestAutoChooseDefaultOption(t *testing.T) {
	choose := AutoChooseDefaultOption(true)
	assert.Equal(t, "yes", choose("Delete?", []string{"yes", "no"}, false))
}

func TestVerboseAndQuietAreExclusive(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"tree", "-v", "-q"})
	cmd.SetOut(os.Stderr)

	assert.ErrorContains(t, cmd.Execute(), "mutually exclusive")
}

func TestShowRejectsMalformedId(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"show", "!!", "--dir", t.TempDir()})

	assert.Error(t, cmd.Execute())
}

func TestWriteCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acewriter.yaml"), []byte("game_folder: game\nplatforms: [pc]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio_controls.yaml"), []byte("libraries:\n  - name: Main\n"), 0o644))

	cmd := newRootCommand()
	cmd.SetArgs([]string{"write", "--quiet", "--plain", "--no-confirm", "--dir", dir})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(dir, "game", "audio", "ace", "Main.xml"))
}
