package output

import (
	"path"

	"github.com/disiqueira/gotree/v3"
)

// VisualFileTree renders slash-separated paths as a directory tree.
type VisualFileTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

func NewVisualFileTree(rootLabel string) VisualFileTree {
	return VisualFileTree{tree: gotree.New(rootLabel), dirs: make(map[string]gotree.Tree)}
}

func (t VisualFileTree) getDir(dirPath string) (dir gotree.Tree) {
	if dirPath == "." || dirPath == "" {
		return t.tree
	}
	dir = t.dirs[dirPath]
	if dir == nil {
		parentDir := t.getDir(path.Dir(dirPath))
		dir = parentDir.Add(path.Base(dirPath))
		t.dirs[dirPath] = dir
	}
	return
}

func (t VisualFileTree) InsertPath(filePath string, nodePrefix string) {
	file := path.Base(filePath)
	dir := t.getDir(path.Dir(filePath))
	dir.Add(nodePrefix + file)
}

func (t VisualFileTree) Render() string {
	return t.tree.Print()
}

// VisualNode is a labelled node of a free-form tree, e.g. libraries with their folders and controls.
type VisualNode struct {
	tree gotree.Tree
}

func NewVisualTree(rootLabel string) VisualNode {
	return VisualNode{tree: gotree.New(rootLabel)}
}

func (n VisualNode) Add(label string) VisualNode {
	return VisualNode{tree: n.tree.Add(label)}
}

func (n VisualNode) Render() string {
	return n.tree.Print()
}
