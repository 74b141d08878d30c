package models

// RootFolderName is the display name of the synthetic tree root.
const RootFolderName = "Root"

// FolderNode is one node of the folder tree built from the backend's flat
// folder path list.
type FolderNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"` // "" for the root; unique across the tree
	Children []*FolderNode `json:"children"`
}

// NewRootFolder returns an empty tree root.
func NewRootFolder() *FolderNode {
	return &FolderNode{Name: RootFolderName, Path: "", Children: []*FolderNode{}}
}

// IsRoot returns true if the node is the synthetic root.
func (n *FolderNode) IsRoot() bool {
	return n.Path == ""
}

// Walk visits n and all of its descendants depth-first, passing each node's
// depth (0 for n itself). Returning false from fn skips that node's children.
func (n *FolderNode) Walk(fn func(node *FolderNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *FolderNode) walk(fn func(node *FolderNode, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the tree, root excluded.
func (n *FolderNode) Count() int {
	total := 0
	n.Walk(func(node *FolderNode, _ int) bool {
		if !node.IsRoot() {
			total++
		}
		return true
	})
	return total
}
