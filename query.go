package acewriter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/library"
	out "github.com/n2code/acewriter/internal/output"
	"github.com/n2code/acewriter/internal/xmlnode"
)

func (a *aceWriter) PrintTree() error {
	tree := out.NewVisualTree(a.describe())
	var addChildren func(node out.VisualNode, parent *asset.Asset)
	addChildren = func(node out.VisualNode, parent *asset.Asset) {
		for _, item := range parent.Children() {
			addChildren(node.Add(a.label(item)), item)
		}
	}
	for _, lib := range a.project.Assets.Libraries() {
		addChildren(tree.Add(a.label(lib)), lib)
	}
	a.printer.Out(out.Required, "%s", tree.Render())
	return nil
}

func (a *aceWriter) label(item *asset.Asset) string {
	switch {
	case item.Type() == asset.Library:
		return a.printer.Colored(item.Name(), out.Blue) + a.printer.Dim(" [library]")
	case item.Type() == asset.Folder:
		return item.Name() + "/"
	}
	var label strings.Builder
	fmt.Fprintf(&label, "%s %s", item.Name(), a.printer.Dim("("+item.Type().String()+")"))
	if item.Id() != asset.MissingId {
		fmt.Fprintf(&label, " #%d", item.Id())
	}
	if item.Type() != asset.State && item.Scope() != asset.GlobalScope {
		if info, exists := a.project.Assets.ScopeInfo(item.Scope()); exists {
			fmt.Fprintf(&label, " @%s", info.Name)
		}
	}
	return label.String()
}

func (a *aceWriter) Show(id asset.Id) error {
	control, lib := a.project.Assets.FindById(id)
	if control == nil {
		return newCommandError(fmt.Sprintf("control #%d", id), ErrUnknownControl)
	}
	folderPath := controlFolderPath(control)

	a.printer.Out(out.Required, "%s %q\n", control.Type(), control.Name())
	a.printer.Out(out.Normal, "  library: %s\n", lib.Name())
	if folderPath != "" {
		a.printer.Out(out.Normal, "  folder:  %s\n", folderPath)
	}
	if info, exists := a.project.Assets.ScopeInfo(control.Scope()); exists {
		a.printer.Out(out.Normal, "  scope:   %s\n", info.Name)
	}

	preview := xmlnode.New("Preview")
	a.writer.WriteControlToXML(preview, control, folderPath)
	for _, element := range preview.Children {
		a.printer.Out(out.Required, "%s\n", element)
	}
	return nil
}

// slash-joined folder names between the library and the control, empty for switch states
func controlFolderPath(control *asset.Asset) string {
	var segments []string
	for parent := control.Parent(); parent != nil && parent.Type() == asset.Folder; parent = parent.Parent() {
		segments = append([]string{parent.Name()}, segments...)
	}
	return strings.Join(segments, "/")
}

func (a *aceWriter) Verify() error {
	var problems []error
	checked := 0
	for _, lib := range a.project.Assets.Libraries() {
		expected := library.FolderHierarchy(lib)
		for _, file := range a.writer.LibraryFiles(lib) {
			checked++
			document, err := readDocument(filepath.Join(a.settings.GameFolder, filepath.FromSlash(file)))
			if err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", file, err))
				continue
			}
			if name, _ := document.Attr("atl_name"); !strings.EqualFold(name, lib.Name()) {
				problems = append(problems, fmt.Errorf("%s: belongs to library %q instead of %q", file, name, lib.Name()))
				continue
			}
			if !reflect.DeepEqual(expected, library.ReadEditorFolders(document)) {
				problems = append(problems, fmt.Errorf("%s: folder hierarchy differs from project", file))
				continue
			}
			a.printer.Out(out.Verbose, "verified %s\n", file)
		}
	}
	if len(problems) > 0 {
		return newCommandError(fmt.Sprintf("%s of %s failed verification", out.Count(len(problems), "file", "files"), out.Count(checked, "file", "files")), errors.Join(problems...))
	}
	a.printer.Out(out.Normal, "%s verified\n", out.Count(checked, "file", "files"))
	return nil
}

func readDocument(path string) (*xmlnode.Element, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return xmlnode.Parse(file)
}
