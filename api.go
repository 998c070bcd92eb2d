package acewriter

import (
	"context"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/library"
)

// AceWriter lets you interface with an audio controls project whose handle was retrieved using Open.
type AceWriter interface {

	// Save writes the library documents of all modified libraries and deletes library files that are no longer produced.
	// Libraries whose definition is unchanged since the last pass are skipped unless force is set.
	// If a prompt is given every deletion has to be confirmed, declined files are kept and reconsidered on the next pass.
	// The pass is recorded in the state file.
	Save(force bool, prompt RequestChoice) (library.Report, error)

	// PrintStatus shows what Save would write and delete, without touching any file.
	PrintStatus(force bool) error

	// PrintTree prints the asset tree of all libraries with folders, controls, and switch states.
	PrintTree() error

	// Show prints the control with the given id along with its XML element as it is written.
	Show(id asset.Id) error

	// Verify compares the folder hierarchy stored in the written library files with the project.
	// Missing files and diverging folders are reported as one error.
	Verify() error

	// Reload reads the project file again, discarding all unsaved modifications.
	Reload() error

	// Watch saves once and then after every change of the project or config file until the context is done.
	Watch(ctx context.Context) error
}

// RequestChoice represents a single-choice decision callback, the first option is considered the default "yes"-like choice.
// If the choice is aborted an empty string must be returned.
// If cleanup is set the implementation is recommended to remove the choice presentation after selection.
type RequestChoice func(request string, options []string, cleanup bool) (choice string)
