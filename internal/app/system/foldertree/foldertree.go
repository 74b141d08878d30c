// Package foldertree turns the backend's flat folder path list into a sorted,
// rooted tree and answers "is this the current folder" queries.
//
// Two sources share the same Build/Sort: Static rebuilds whenever its input
// list changes, and Fetching rebuilds after pulling the list from the backend.
package foldertree

import (
	"sort"

	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/folderpath"
	"github.com/dalemusser/ovaview/internal/domain/models"
)

// Build creates a tree from paths and sorts it. Every unique prefix in the
// input becomes exactly one node; duplicate and overlapping paths are no-ops.
func Build(paths []string, coll *collation.Collator) *models.FolderNode {
	root := models.NewRootFolder()
	index := map[string]*models.FolderNode{"": root}

	for _, p := range paths {
		parent := root
		cum := ""
		for _, seg := range folderpath.Split(p) {
			cum = folderpath.Child(cum, seg)
			node, ok := index[cum]
			if !ok {
				node = &models.FolderNode{Name: seg, Path: cum, Children: []*models.FolderNode{}}
				parent.Children = append(parent.Children, node)
				index[cum] = node
			}
			parent = node
		}
	}

	Sort(root, coll)
	return root
}

// Sort orders every node's children by name, recursively.
func Sort(node *models.FolderNode, coll *collation.Collator) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		return coll.Less(node.Children[i].Name, node.Children[j].Name)
	})
	for _, c := range node.Children {
		Sort(c, coll)
	}
}

// IsActive reports whether path is the currently selected folder. There is no
// ancestor matching.
func IsActive(path, current string) bool {
	return path == current
}

// NodeView is the JSON shape of a tree node with selection state attached.
type NodeView struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Active   bool        `json:"active"`
	Children []*NodeView `json:"children"`
}

// Annotate copies the tree, marking the node whose path equals current.
func Annotate(node *models.FolderNode, current string) *NodeView {
	v := &NodeView{
		Name:     node.Name,
		Path:     node.Path,
		Active:   IsActive(node.Path, current),
		Children: make([]*NodeView, 0, len(node.Children)),
	}
	for _, c := range node.Children {
		v.Children = append(v.Children, Annotate(c, current))
	}
	return v
}

// Row is one line of a flattened tree listing.
type Row struct {
	Name   string
	Path   string
	Depth  int
	Active bool
}

// Flatten lists the tree depth-first, root first, for line-oriented shells.
func Flatten(root *models.FolderNode, current string) []Row {
	var rows []Row
	root.Walk(func(n *models.FolderNode, depth int) bool {
		rows = append(rows, Row{Name: n.Name, Path: n.Path, Depth: depth, Active: IsActive(n.Path, current)})
		return true
	})
	return rows
}

// Contains reports whether path names a node in the tree.
func Contains(root *models.FolderNode, path string) bool {
	found := false
	root.Walk(func(n *models.FolderNode, _ int) bool {
		if n.Path == path {
			found = true
		}
		return !found
	})
	return found
}
