package library

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/audioimpl"
	"github.com/n2code/acewriter/internal/sourcecontrol"
	"github.com/n2code/acewriter/internal/xmlnode"
	"go.uber.org/zap"
)

func NewWriter(assets *asset.Manager, impl audioimpl.Api, scc sourcecontrol.Api, settings Settings, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.Changelist == "" {
		settings.Changelist = DefaultChangelist
	}
	return &Writer{assets: assets, impl: impl, scc: scc, settings: settings, log: log}
}

// SetDryRun makes subsequent passes compute documents and paths without touching disk, source control, or modification flags.
func (w *Writer) SetDryRun(dryRun bool) {
	w.dryRun = dryRun
}

// SetDeleteConfirmation installs a callback which is asked before each stale library file is deleted.
func (w *Writer) SetDeleteConfirmation(confirm func(relativePath string) bool) {
	w.confirmDelete = confirm
}

// WriteAll writes every library of the assets manager and deletes the library files of the previous pass
// which are no longer produced. The returned set is the previous set of the next pass.
// Without assets manager or audio system implementation nothing happens and the previous set is returned.
func (w *Writer) WriteAll(previous PathSet) (found PathSet, report Report) {
	report.PassId = uuid.NewString()
	if w.assets == nil || w.impl == nil {
		w.log.Debug("write pass skipped, collaborators missing", zap.String("pass", report.PassId))
		return previous, report
	}
	log := w.log.With(zap.String("pass", report.PassId))

	found = make(PathSet)
	for _, lib := range w.assets.Libraries() {
		found.Merge(w.WriteLibrary(lib, &report))
		if !w.dryRun {
			lib.Walk(func(a *asset.Asset) { a.SetModified(false) })
		}
	}

	for _, stale := range previous.Difference(found).Sorted() {
		if w.confirmDelete != nil && !w.confirmDelete(stale) {
			report.Skipped = append(report.Skipped, stale)
			found.Add(stale) //reconsidered next time
			continue
		}
		if w.dryRun {
			report.Deleted = append(report.Deleted, stale)
			continue
		}
		err := w.deleteLibraryFile(resolveOnDisk(w.settings.GameFolder, stale))
		switch {
		case err == nil:
			report.Deleted = append(report.Deleted, stale)
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("library file already gone", zap.String("path", stale), zap.Error(err))
			report.Warnings = append(report.Warnings, err)
		default:
			log.Warn("failed to delete library file", zap.String("path", stale), zap.Error(err))
			report.Warnings = append(report.Warnings, err)
			report.Skipped = append(report.Skipped, stale)
			found.Add(stale) //retried next time
		}
	}

	log.Info("write pass finished",
		zap.Int("written", len(report.Written)),
		zap.Int("deleted", len(report.Deleted)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Bool("dry_run", w.dryRun))
	return found, report
}

// Plan performs a dry run of WriteAll: the report lists what a real pass would write and delete.
func (w *Writer) Plan(previous PathSet) (found PathSet, report Report) {
	wasDryRun := w.dryRun
	w.dryRun = true
	defer func() { w.dryRun = wasDryRun }()
	return w.WriteAll(previous)
}

// WriteLibrary writes the dirty documents of a modified library and yields every path the library occupies.
// Unmodified libraries are not serialized but still account for their paths, unless one of their files is missing on disk.
func (w *Writer) WriteLibrary(lib *asset.Asset, report *Report) (paths PathSet) {
	paths = make(PathSet)
	if !lib.IsModified() {
		files := w.LibraryFiles(lib)
		missing := w.firstMissing(files)
		if missing == "" {
			for _, file := range files {
				paths.Add(file)
				report.Unchanged = append(report.Unchanged, file)
			}
			return
		}
		w.log.Info("library file missing, writing library", zap.String("library", lib.Name()), zap.String("path", missing))
	}

	scopes := make(libraryScopes)
	for _, item := range lib.Children() {
		w.writeItem(item, "", scopes)
	}
	if len(scopes) == 0 { //empty library still gets its file at the root
		scopes.get(asset.GlobalScope).dirty = true
	}

	for _, scope := range scopes.sortedKeys() {
		relative, ok := w.libraryPath(lib, scope)
		if !ok {
			err := fmt.Errorf("library %s uses unknown scope %d", lib.Name(), scope)
			w.log.Warn("skipping scope", zap.Error(err))
			report.Warnings = append(report.Warnings, err)
			continue
		}
		file := relative + libraryFileExtension
		paths.Add(file)

		entry := scopes[scope]
		if !entry.dirty {
			report.Unchanged = append(report.Unchanged, file)
			continue
		}
		document := w.buildDocument(lib, entry)
		report.Written = append(report.Written, file)
		if w.dryRun {
			continue
		}
		w.replaceCaseVariant(file, report)
		if err := w.saveDocument(document, filepath.Join(w.settings.GameFolder, filepath.FromSlash(file))); err != nil {
			w.log.Warn("failed to write library file", zap.String("path", file), zap.Error(err))
			report.Warnings = append(report.Warnings, err)
		}
	}
	return
}

// LibraryFiles lists the files the library occupies, relative to the game folder and in their original case.
func (w *Writer) LibraryFiles(lib *asset.Asset) (files []string) {
	for _, scope := range collectScopes(lib) {
		if relative, ok := w.libraryPath(lib, scope); ok {
			files = append(files, relative+libraryFileExtension)
		}
	}
	return
}

func (w *Writer) buildDocument(lib *asset.Asset, entry *libraryScope) *xmlnode.Element {
	root := xmlnode.New("ATLConfig")
	root.SetAttr("atl_name", lib.Name())
	root.SetAttr("atl_version", strconv.Itoa(CurrentFileVersion))
	for i, section := range entry.sections {
		if asset.ItemType(i) == asset.State { //states are written inside their switches
			continue
		}
		if section != nil && section.ChildCount() > 0 {
			root.AddChild(section)
		}
	}
	editorData := xmlnode.New("EditorData")
	folders := xmlnode.New("Folders")
	writeEditorData(lib, folders)
	editorData.AddChild(folders)
	root.AddChild(editorData)
	return root
}

func (w *Writer) writeItem(item *asset.Asset, folderPath string, scopes libraryScopes) {
	if item == nil {
		return
	}
	if item.Type() == asset.Folder {
		nested := item.Name()
		if folderPath != "" {
			nested = folderPath + "/" + item.Name() //forward slash regardless of platform
		}
		for _, child := range item.Children() {
			w.writeItem(child, nested, scopes)
		}
	} else if item.Type().IsControl() {
		entry := scopes.get(item.Scope())
		entry.dirty = true
		w.WriteControlToXML(entry.sections[item.Type()], item, folderPath)
	}
	if !w.dryRun {
		item.SetModified(false)
	}
}

// libraryPath yields the slash-separated file path without extension, relative to the game folder
func (w *Writer) libraryPath(lib *asset.Asset, scope asset.Scope) (relative string, ok bool) {
	if scope == asset.GlobalScope {
		return path.Join(w.settings.ControlsPath(), lib.Name()), true
	}
	info, exists := w.assets.ScopeInfo(scope)
	if !exists || info.Name == "" {
		return "", false
	}
	return path.Join(w.settings.ControlsPath(), levelsFolder, info.Name, lib.Name()), true
}

//yields the distinct scopes of all controls in the library, the global scope if there are none
func collectScopes(lib *asset.Asset) []asset.Scope {
	seen := make(map[asset.Scope]bool)
	var visit func(item *asset.Asset)
	visit = func(item *asset.Asset) {
		switch {
		case item.Type() == asset.Folder:
			for _, child := range item.Children() {
				visit(child)
			}
		case item.Type().IsControl():
			seen[item.Scope()] = true
		}
	}
	for _, child := range lib.Children() {
		visit(child)
	}
	if len(seen) == 0 {
		seen[asset.GlobalScope] = true
	}
	scopes := make([]asset.Scope, 0, len(seen))
	for scope := range seen {
		scopes = append(scopes, scope)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i] < scopes[j] })
	return scopes
}

func (s libraryScopes) get(scope asset.Scope) *libraryScope {
	entry := s[scope]
	if entry == nil {
		entry = &libraryScope{}
		for i := range entry.sections {
			entry.sections[i] = xmlnode.New(sectionTag(asset.ItemType(i)))
		}
		s[scope] = entry
	}
	return entry
}

func (s libraryScopes) sortedKeys() []asset.Scope {
	keys := make([]asset.Scope, 0, len(s))
	for scope := range s {
		keys = append(keys, scope)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sectionTag(itemType asset.ItemType) string {
	switch itemType {
	case asset.Trigger:
		return "AudioTriggers"
	case asset.Parameter:
		return "AudioRtpcs"
	case asset.Switch:
		return "AudioSwitches"
	case asset.State:
		return "AudioSwitchStates"
	case asset.Environment:
		return "AudioEnvironments"
	case asset.Preload:
		return "AudioPreloads"
	}
	return ""
}
