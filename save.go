package acewriter

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/library"
	out "github.com/n2code/acewriter/internal/output"
	"go.uber.org/zap"
)

func (a *aceWriter) Save(force bool, prompt RequestChoice) (library.Report, error) {
	a.printer.Out(out.Verbose, "Saving libraries of %s\n", a.describe())
	state, err := a.loadState()
	if err != nil {
		return library.Report{}, err
	}
	a.skipUnchangedLibraries(state, force)

	if prompt != nil {
		a.writer.SetDeleteConfirmation(func(relativePath string) bool {
			choice := prompt(fmt.Sprintf("Delete stale library file %s?", relativePath), []string{"yes", "no"}, false)
			return choice == "yes"
		})
		defer a.writer.SetDeleteConfirmation(nil)
	}

	found, report := a.writer.WriteAll(state.Paths)

	state.Paths = found
	state.LastPass = report.PassId
	state.Fingerprints = make(map[string]string)
	state.Settings = ""
	if len(report.Warnings) == 0 { //otherwise every library is rewritten next time
		for name, fingerprint := range a.project.Fingerprints {
			state.Fingerprints[name] = fingerprint
		}
		state.Settings = a.settings.Fingerprint()
	}
	if err := state.SaveToLocalFile(a.settings.StateFile); err != nil {
		return report, newCommandError("state could not be saved", err)
	}

	a.printReport(report, false)
	if len(report.Warnings) > 0 {
		return report, newCommandError(out.Count(len(report.Warnings), "warning", "warnings"), ErrPassIncomplete)
	}
	return report, nil
}

func (a *aceWriter) PrintStatus(force bool) error {
	state, err := a.loadState()
	if err != nil {
		return err
	}
	a.skipUnchangedLibraries(state, force)
	_, report := a.writer.Plan(state.Paths)
	a.printReport(report, true)
	return nil
}

func (a *aceWriter) loadState() (*library.State, error) {
	state, err := library.LoadStateFromLocalFile(a.settings.StateFile)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Debug("no state file, starting fresh", zap.String("path", a.settings.StateFile))
		return library.NewState(), nil
	}
	if err != nil {
		return nil, newCommandError("state load error", err)
	}
	return state, nil
}

// skipUnchangedLibraries marks libraries as unmodified if their definition matches the one of the last pass
// and the output settings did not change since.
func (a *aceWriter) skipUnchangedLibraries(state *library.State, force bool) {
	if force {
		return
	}
	if state.Settings != a.settings.Fingerprint() {
		a.log.Info("output settings changed, writing all libraries")
		return
	}
	for _, lib := range a.project.Assets.Libraries() {
		key := strings.ToLower(lib.Name())
		previous, known := state.Fingerprints[key]
		if known && previous == a.project.Fingerprints[key] {
			lib.Walk(func(item *asset.Asset) { item.SetModified(false) })
			a.log.Debug("library unchanged", zap.String("library", lib.Name()))
		}
	}
}

func (a *aceWriter) printReport(report library.Report, planned bool) {
	paths, statuses := report.FileStatuses()
	tree := out.NewVisualFileTree(a.settings.GameFolder)
	changes := 0
	for _, path := range paths {
		status := statuses[path]
		if status == library.Unchanged {
			a.printer.Out(out.Verbose, "unchanged: %s\n", path)
			continue
		}
		changes++
		prefix := a.printer.Colored(fmt.Sprintf("[%c] ", status), library.ColorForStatus(status))
		tree.InsertPath(path, prefix)
	}

	if changes > 0 {
		a.printer.Out(out.Required, "%s", tree.Render())
	}
	verb := "Written"
	if planned {
		verb = "To be written"
	}
	a.printer.Out(out.Normal, "%s: %s, deleted: %d, kept: %d, unchanged: %d\n",
		verb, out.Count(len(report.Written), "file", "files"), len(report.Deleted), len(report.Skipped), len(report.Unchanged))
	for _, warning := range report.Warnings {
		a.printer.Out(out.Error, "%s\n", a.printer.Colored(out.Indent(2, warning.Error()), out.Red))
	}
}
