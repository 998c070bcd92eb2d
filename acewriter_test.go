package acewriter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/sourcecontrol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testConfig = `
game_folder: game
platforms: [pc, console]
`

const testProject = `
libraries:
  - name: Weapons
    items:
      - folder: guns
        items:
          - trigger: fire
            id: 1001
            radius: 4
            connections:
              - tag: Event
                attrs: {name: fire}
      - switch: surface
        scope: forest
        states:
          - state: grass
            id: 1002
  - name: Ambience
`

type testBed struct {
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestBed(t *testing.T, configText string, projectText string) testBed {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acewriter.yaml"), []byte(configText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio_controls.yaml"), []byte(projectText), 0o644))
	return testBed{dir: dir, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

func (b testBed) open(t *testing.T, verbosity VerbosityLevel) AceWriter {
	t.Helper()
	b.stdout.Reset()
	handle, err := Open(b.dir, CreateConfig{Verbosity: verbosity, Logger: zap.NewNop(), Stdout: b.stdout, Stderr: b.stderr})
	require.NoError(t, err)
	return handle
}

func (b testBed) gameFile(relative string) string {
	return filepath.Join(b.dir, "game", filepath.FromSlash(relative))
}

func (b testBed) exists(relative string) bool {
	_, err := os.Stat(b.gameFile(relative))
	return err == nil
}

func (b testBed) rewriteConfig(t *testing.T, configText string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(b.dir, "acewriter.yaml"), []byte(configText), 0o644))
}

func (b testBed) rewriteProject(t *testing.T, projectText string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(b.dir, "audio_controls.yaml"), []byte(projectText), 0o644))
}

func TestSaveWritesAllLibraries(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, DefaultVerbosity)

	report, err := handle.Save(false, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"audio/ace/Weapons.xml",
		"audio/ace/levels/forest/Weapons.xml",
		"audio/ace/Ambience.xml",
	}, report.Written)
	assert.True(t, bed.exists("audio/ace/Weapons.xml"))
	assert.True(t, bed.exists("audio/ace/levels/forest/Weapons.xml"))
	assert.True(t, bed.exists("audio/ace/Ambience.xml"))
	assert.FileExists(t, filepath.Join(bed.dir, ".acewriter.state"))
	assert.Contains(t, bed.stdout.String(), "[~] Weapons.xml")
	assert.Contains(t, bed.stdout.String(), "Written: 3 files")
}

func TestUnchangedLibrariesAreSkipped(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	_, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	report, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.Len(t, report.Unchanged, 3)
	assert.Empty(t, report.Deleted)

	report, err = bed.open(t, QuietMode).Save(true, nil)
	require.NoError(t, err)
	assert.Len(t, report.Written, 3)
}

func TestChangedLibraryIsRewrittenAlone(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	_, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	bed.rewriteProject(t, strings.Replace(testProject, "radius: 4", "radius: 8", 1))
	report, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"audio/ace/Weapons.xml", "audio/ace/levels/forest/Weapons.xml"}, report.Written)
	assert.Equal(t, []string{"audio/ace/Ambience.xml"}, report.Unchanged)
}

func TestChangedDataRootRewritesAllLibraries(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	_, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	bed.rewriteConfig(t, testConfig+"audio_data_root: sounds\n")
	report, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"sounds/ace/Weapons.xml",
		"sounds/ace/levels/forest/Weapons.xml",
		"sounds/ace/Ambience.xml",
	}, report.Written)
	assert.Empty(t, report.Unchanged)
	assert.Len(t, report.Deleted, 3)
	assert.True(t, bed.exists("sounds/ace/Weapons.xml"))
	assert.True(t, bed.exists("sounds/ace/levels/forest/Weapons.xml"))
	assert.True(t, bed.exists("sounds/ace/Ambience.xml"))
	assert.False(t, bed.exists("audio/ace/Weapons.xml"))

	report, err = bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Written, "settings are remembered")
	assert.Len(t, report.Unchanged, 3)
}

func TestChangedPlatformsRewriteAllLibraries(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	_, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	bed.rewriteConfig(t, "game_folder: game\nplatforms: [pc]\n")
	report, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	assert.Len(t, report.Written, 3)
	assert.Empty(t, report.Deleted)
}

func TestReloadReadsChangedConfig(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, QuietMode)
	_, err := handle.Save(false, nil)
	require.NoError(t, err)

	bed.rewriteConfig(t, testConfig+"audio_data_root: sounds\n")
	require.NoError(t, handle.Reload())
	report, err := handle.Save(false, nil)
	require.NoError(t, err)

	assert.Len(t, report.Written, 3)
	assert.True(t, bed.exists("sounds/ace/Ambience.xml"))
	assert.False(t, bed.exists("audio/ace/Ambience.xml"))

	bed.rewriteConfig(t, "source_control: svn\n")
	assert.ErrorContains(t, handle.Reload(), "config load error")
	_, err = handle.Save(false, nil)
	require.NoError(t, err, "failed reload keeps the previous settings")
	assert.True(t, bed.exists("sounds/ace/Ambience.xml"))
}

func TestConnectionTagsLimitSerializedConnections(t *testing.T) {
	bed := newTestBed(t, testConfig+"connection_tags:\n  trigger: [Sound]\n", testProject)
	handle := bed.open(t, QuietMode)

	require.NoError(t, handle.Show(1001))

	assert.Contains(t, bed.stdout.String(), `<ATLTrigger atl_name="fire"`)
	assert.NotContains(t, bed.stdout.String(), "<Event")
}

func TestRemovedScopeIsDeleted(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	_, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	bed.rewriteProject(t, strings.Replace(testProject, "        scope: forest\n", "", 1))
	report, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"audio/ace/levels/forest/weapons.xml"}, report.Deleted)
	assert.False(t, bed.exists("audio/ace/levels/forest/Weapons.xml"))
	assert.True(t, bed.exists("audio/ace/Weapons.xml"))
}

func TestDeclinedDeletionIsReconsidered(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	_, err := bed.open(t, QuietMode).Save(false, nil)
	require.NoError(t, err)
	bed.rewriteProject(t, strings.Replace(testProject, "  - name: Ambience\n", "", 1))

	var asked []string
	decline := func(request string, options []string, cleanup bool) string {
		asked = append(asked, request)
		return "no"
	}
	report, err := bed.open(t, QuietMode).Save(false, decline)
	require.NoError(t, err)
	assert.Equal(t, []string{"audio/ace/ambience.xml"}, report.Skipped)
	assert.Len(t, asked, 1)
	assert.True(t, bed.exists("audio/ace/Ambience.xml"))

	accept := func(request string, options []string, cleanup bool) string { return options[0] }
	report, err = bed.open(t, QuietMode).Save(false, accept)
	require.NoError(t, err)
	assert.Equal(t, []string{"audio/ace/ambience.xml"}, report.Deleted)
	assert.False(t, bed.exists("audio/ace/Ambience.xml"))
}

func TestPrintStatusDoesNotWrite(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, DefaultVerbosity)

	require.NoError(t, handle.PrintStatus(false))

	assert.False(t, bed.exists("audio/ace/Weapons.xml"))
	assert.NoFileExists(t, filepath.Join(bed.dir, ".acewriter.state"))
	assert.Contains(t, bed.stdout.String(), "To be written: 3 files")
}

func TestPrintTree(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, QuietMode)

	require.NoError(t, handle.PrintTree())

	tree := bed.stdout.String()
	assert.Contains(t, tree, "Weapons [library]")
	assert.Contains(t, tree, "guns/")
	assert.Contains(t, tree, "fire (trigger) #1001")
	assert.Contains(t, tree, "surface (switch) @forest")
	assert.Contains(t, tree, "grass (state) #1002")
}

func TestShow(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, DefaultVerbosity)

	require.NoError(t, handle.Show(1001))

	shown := bed.stdout.String()
	assert.Contains(t, shown, `trigger "fire"`)
	assert.Contains(t, shown, "library: Weapons")
	assert.Contains(t, shown, "folder:  guns")
	assert.Contains(t, shown, `<ATLTrigger atl_name="fire" path="guns" atl_radius="4">`)
	assert.Contains(t, shown, `<Event name="fire"></Event>`)

	err := handle.Show(4242)
	assert.ErrorIs(t, err, ErrUnknownControl)
}

func TestVerify(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, DefaultVerbosity)

	err := handle.Verify()
	require.Error(t, err, "nothing written yet")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = handle.Save(false, nil)
	require.NoError(t, err)
	require.NoError(t, handle.Verify())
	assert.Contains(t, bed.stdout.String(), "3 files verified")

	tampered := `<ATLConfig atl_name="Ambience" atl_version="2"><EditorData><Folders><Folder name="ghost"/></Folders></EditorData></ATLConfig>`
	require.NoError(t, os.WriteFile(bed.gameFile("audio/ace/Ambience.xml"), []byte(tampered), 0o644))
	err = handle.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder hierarchy differs")
}

func TestOpenFailures(t *testing.T) {
	bed := newTestBed(t, "source_control: svn\n", testProject)
	_, err := Open(bed.dir, CreateConfig{Logger: zap.NewNop()})
	assert.ErrorContains(t, err, "config load error")

	bed = newTestBed(t, testConfig, "libraries:\n  - name: L\n    items:\n      - state: lonely\n")
	_, err = Open(bed.dir, CreateConfig{Logger: zap.NewNop()})
	var commandErr *CommandError
	require.ErrorAs(t, err, &commandErr)
	assert.Contains(t, err.Error(), "project load error")

	bed = newTestBed(t, testConfig+"source_control: git\n", testProject)
	_, err = Open(bed.dir, CreateConfig{Logger: zap.NewNop()})
	assert.ErrorContains(t, err, "source control unavailable")
}

func TestSaveWithGit(t *testing.T) {
	bed := newTestBed(t, "source_control: git\n", testProject)
	_, err := git.PlainInit(bed.dir, false)
	require.NoError(t, err)
	handle, err := Open(bed.dir, CreateConfig{Verbosity: QuietMode, Logger: zap.NewNop(), Stdout: bed.stdout, Stderr: bed.stderr})
	require.NoError(t, err)

	_, err = handle.Save(false, nil)
	require.NoError(t, err)

	repo, err := sourcecontrol.OpenGit(bed.dir, zap.NewNop())
	require.NoError(t, err)
	written := filepath.Join(bed.dir, "audio", "ace", "Weapons.xml")
	assert.True(t, repo.GetFileAttributes(written).Has(sourcecontrol.AttributeManaged))
}

func TestWatchSavesOnStart(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, QuietMode)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, handle.Watch(ctx))
	assert.True(t, bed.exists("audio/ace/Weapons.xml"))
}

func TestWatchFollowsConfigChanges(t *testing.T) {
	bed := newTestBed(t, testConfig, testProject)
	handle := bed.open(t, QuietMode)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- handle.Watch(ctx) }()

	require.Eventually(t, func() bool { return bed.exists("audio/ace/Weapons.xml") }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond) //watcher is up after the initial pass
	bed.rewriteConfig(t, testConfig+"audio_data_root: sounds\n")

	assert.Eventually(t, func() bool {
		return bed.exists("sounds/ace/Weapons.xml") && !bed.exists("audio/ace/Weapons.xml")
	}, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestControlFolderPath(t *testing.T) {
	lib := asset.NewLibrary("L")
	outer, inner := asset.NewFolder("a"), asset.NewFolder("b")
	control := asset.NewControl("c", asset.Trigger, asset.GlobalScope)
	require.NoError(t, lib.AddChild(outer))
	require.NoError(t, outer.AddChild(inner))
	require.NoError(t, inner.AddChild(control))

	assert.Equal(t, "a/b", controlFolderPath(control))
	assert.Equal(t, "", controlFolderPath(inner.Parent()))
}
