package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/n2code/acewriter/internal/sourcecontrol"
	"github.com/n2code/acewriter/internal/xmlnode"
	"go.uber.org/zap"
)

const ownerWritable fs.FileMode = 0o200

func (w *Writer) saveDocument(document *xmlnode.Element, fullPath string) error {
	blob, err := document.Marshal()
	if err != nil {
		return fmt.Errorf("serializing %s failed: %w", fullPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}
	if stat, err := os.Stat(fullPath); err == nil && stat.Mode().Perm()&ownerWritable == 0 {
		//read-only file, e.g. left behind by a locking source control
		if err := os.Chmod(fullPath, stat.Mode().Perm()|ownerWritable); err != nil {
			return fmt.Errorf("clearing read-only flag of %s failed: %w", fullPath, err)
		}
	}
	if err := os.WriteFile(fullPath, blob, 0o644); err != nil {
		return err
	}
	w.checkOutFile(fullPath)
	return nil
}

func (w *Writer) checkOutFile(fullPath string) {
	if w.scc == nil {
		return
	}
	var err error
	attributes := w.scc.GetFileAttributes(fullPath)
	switch {
	case attributes.Has(sourcecontrol.AttributeManaged):
		err = w.scc.CheckOut(fullPath)
	case attributes == sourcecontrol.AttributeInvalid || attributes.Has(sourcecontrol.AttributeNormal):
		err = w.scc.Add(fullPath, w.settings.Changelist, sourcecontrol.AddWithoutSubmit|sourcecontrol.AddChangelist)
	}
	if err != nil {
		w.log.Warn("source control rejected library file", zap.String("path", fullPath), zap.Error(err))
	}
}

func (w *Writer) deleteLibraryFile(fullPath string) error {
	if w.scc != nil && w.scc.GetFileAttributes(fullPath).Has(sourcecontrol.AttributeManaged) {
		//source control handles the delete, the file itself may still be left over
		if err := w.scc.Delete(fullPath, w.settings.Changelist, sourcecontrol.DeleteWithoutSubmit|sourcecontrol.AddChangelist); err != nil {
			return fmt.Errorf("source control failed to delete %s: %w", fullPath, err)
		}
		if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if _, err := os.Stat(fullPath); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

// resolveOnDisk turns a lower-cased relative path into the matching existing path below root,
// comparing each segment case-insensitively. Segments without a match are kept as given.
func resolveOnDisk(root string, lowerRelative string) string {
	resolved := root
	for _, segment := range strings.Split(lowerRelative, "/") {
		candidate := filepath.Join(resolved, segment)
		if _, err := os.Lstat(candidate); err == nil {
			resolved = candidate
			continue
		}
		entries, err := os.ReadDir(resolved)
		if err == nil {
			for _, entry := range entries {
				if strings.EqualFold(entry.Name(), segment) {
					candidate = filepath.Join(resolved, entry.Name())
					break
				}
			}
		}
		resolved = candidate
	}
	return resolved
}

// firstMissing yields the first of the relative library files which does not exist below the game folder.
func (w *Writer) firstMissing(files []string) string {
	for _, file := range files {
		if _, err := os.Stat(resolveOnDisk(w.settings.GameFolder, strings.ToLower(file))); err != nil {
			return file
		}
	}
	return ""
}

// replaceCaseVariant deletes an existing library file whose path differs from the given one only in letter case,
// so that renaming a library or scope in case does not leave the old file behind.
func (w *Writer) replaceCaseVariant(file string, report *Report) {
	variant, exists := caseVariant(w.settings.GameFolder, file)
	if !exists {
		return
	}
	if err := w.deleteLibraryFile(variant); err != nil {
		w.log.Warn("failed to replace differently cased library file", zap.String("path", variant), zap.Error(err))
		report.Warnings = append(report.Warnings, err)
		return
	}
	w.log.Info("replaced differently cased library file", zap.String("old", variant), zap.String("new", file))
}

// caseVariant finds the existing file below root whose slash-separated relative path matches the given one
// case-insensitively. It reports false if there is none or if every segment already matches exactly.
func caseVariant(root string, relative string) (string, bool) {
	current := root
	differs := false
	for _, segment := range strings.Split(relative, "/") {
		entries, err := os.ReadDir(current)
		if err != nil {
			return "", false
		}
		match := ""
		for _, entry := range entries {
			if entry.Name() == segment {
				match = segment
				break
			}
			if match == "" && strings.EqualFold(entry.Name(), segment) {
				match = entry.Name()
			}
		}
		if match == "" {
			return "", false
		}
		differs = differs || match != segment
		current = filepath.Join(current, match)
	}
	return current, differs
}
