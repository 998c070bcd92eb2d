package library

import (
	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/xmlnode"
)

//records the folder names below the given asset, recursively and folders only
func writeEditorData(parent *asset.Asset, node *xmlnode.Element) {
	if parent == nil || node == nil {
		return
	}
	for _, item := range parent.Children() {
		if item.Type() == asset.Folder {
			folder := xmlnode.New("Folder")
			folder.SetAttr("name", item.Name())
			writeEditorData(item, folder)
			node.AddChild(folder)
		}
	}
}

// ReadEditorFolders reconstructs the folder hierarchy from the editor data of a library document.
// Documents without editor data yield no folders.
func ReadEditorFolders(document *xmlnode.Element) []FolderNode {
	if document == nil {
		return nil
	}
	editorData := document.FindChild("EditorData")
	if editorData == nil {
		return nil
	}
	folders := editorData.FindChild("Folders")
	if folders == nil {
		return nil
	}
	return readFolders(folders)
}

func readFolders(node *xmlnode.Element) (folders []FolderNode) {
	for _, child := range node.ChildrenByTag("Folder") {
		name, exists := child.Attr("name")
		if !exists {
			continue
		}
		folders = append(folders, FolderNode{Name: name, Children: readFolders(child)})
	}
	return
}

// FolderHierarchy describes the folders of a library in the same shape as ReadEditorFolders.
func FolderHierarchy(parent *asset.Asset) (folders []FolderNode) {
	for _, item := range parent.Children() {
		if item.Type() == asset.Folder {
			folders = append(folders, FolderNode{Name: item.Name(), Children: FolderHierarchy(item)})
		}
	}
	return
}
