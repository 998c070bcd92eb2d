package library

import (
	"path"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/audioimpl"
	"github.com/n2code/acewriter/internal/sourcecontrol"
	"github.com/n2code/acewriter/internal/xmlnode"
	"go.uber.org/zap"
)

const CurrentFileVersion = 2
const DefaultChangelist = "(ACE Changelist)"

const controlsFolder = "ace"
const levelsFolder = "levels"
const libraryFileExtension = ".xml"

// Settings locate the library files and describe the target platforms of preload requests.
type Settings struct {
	GameFolder    string   //absolute, system-native
	AudioDataRoot string   //slash-separated, relative to the game folder
	Platforms     []string //platform index = position
	Changelist    string
}

// ControlsPath is the slash-separated location of all library files relative to the game folder.
func (s Settings) ControlsPath() string {
	return path.Join(s.AudioDataRoot, controlsFolder)
}

// Writer serializes the libraries of an assets manager into ATL documents.
// The audio system implementation and source control are optional collaborators:
// without an implementation nothing is written, without source control files are only written/deleted on disk.
type Writer struct {
	assets        *asset.Manager
	impl          audioimpl.Api
	scc           sourcecontrol.Api
	settings      Settings
	log           *zap.Logger
	dryRun        bool
	confirmDelete func(relativePath string) bool
}

// Report summarizes a write pass. All paths are slash-separated and relative to the game folder.
type Report struct {
	PassId    string
	Written   []string
	Unchanged []string
	Deleted   []string
	Skipped   []string //stale files the deletion confirmation declined
	Warnings  []error
}

// libraryScope accumulates the sections of one output document
type libraryScope struct {
	sections [asset.NumControlTypes]*xmlnode.Element
	dirty    bool
}

type libraryScopes map[asset.Scope]*libraryScope

// FolderNode mirrors the folder hierarchy stored in the editor data of a document.
type FolderNode struct {
	Name     string
	Children []FolderNode
}
