package sourcecontrol

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Git maps the source control contract onto a git working tree.
// A file is managed if it is present in the index. Git knows no exclusive checkout, hence CheckOut only
// verifies that the file is managed. Changelists do not exist either; the label is only logged.
type Git struct {
	repo     *git.Repository
	worktree *git.Worktree
	root     string //absolute, system-native
	log      *zap.Logger
}

// OpenGit finds the repository containing the given directory (searching upwards).
func OpenGit(directory string, log *zap.Logger) (*Git, error) {
	if log == nil {
		log = zap.NewNop()
	}
	repo, err := git.PlainOpenWithOptions(directory, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s failed: %w", directory, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("repository at %s has no working tree: %w", directory, err)
	}
	root, err := filepath.Abs(worktree.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &Git{repo: repo, worktree: worktree, root: root, log: log}, nil
}

//yields the slash-separated path relative to the working tree root
func (g *Git) relative(path string) (string, error) {
	rel, err := filepath.Rel(g.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path outside of repository %s: %s", g.root, path)
	}
	return filepath.ToSlash(rel), nil
}

func (g *Git) GetFileAttributes(path string) FileAttributes {
	rel, err := g.relative(path)
	if err != nil {
		return AttributeInvalid
	}
	if idx, err := g.repo.Storer.Index(); err == nil {
		if _, err := idx.Entry(rel); err == nil {
			return AttributeManaged
		}
	}
	if _, err := os.Stat(path); err == nil {
		return AttributeNormal
	}
	return AttributeInvalid
}

func (g *Git) CheckOut(path string) error {
	if !g.GetFileAttributes(path).Has(AttributeManaged) {
		return fmt.Errorf("cannot check out unmanaged file %s", path)
	}
	g.log.Debug("git needs no checkout", zap.String("path", path))
	return nil
}

func (g *Git) Add(path string, changelist string, flags Flags) error {
	rel, err := g.relative(path)
	if err != nil {
		return err
	}
	if _, err := g.worktree.Add(rel); err != nil {
		return fmt.Errorf("git add %s failed: %w", rel, err)
	}
	g.log.Debug("staged file", zap.String("path", rel), zap.String("changelist", changelist))
	return nil
}

func (g *Git) Delete(path string, changelist string, flags Flags) error {
	rel, err := g.relative(path)
	if err != nil {
		return err
	}
	if _, err := g.worktree.Remove(rel); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("git rm %s failed: %w", rel, err)
	}
	g.log.Debug("staged removal", zap.String("path", rel), zap.String("changelist", changelist))
	return nil
}
